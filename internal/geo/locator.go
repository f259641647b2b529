package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Position is a single geolocation fix.
type Position struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	Timestamp      time.Time
}

// Options mirror the knobs a platform position provider accepts.
type Options struct {
	HighAccuracy bool          // Prefer GPS over coarse network positioning
	Timeout      time.Duration // Bounded wait for a fix (0 = no bound)
	MaximumAge   time.Duration // Oldest cached fix accepted (0 = fresh fix only)
}

// DefaultOptions returns the options used for location sharing.
func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      15 * time.Second,
		MaximumAge:   0,
	}
}

// Locator provides the current device position.
type Locator interface {
	CurrentPosition(ctx context.Context, opts Options) (Position, error)
}

// LocatorFunc is a function adapter for Locator.
type LocatorFunc func(ctx context.Context, opts Options) (Position, error)

func (f LocatorFunc) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	return f(ctx, opts)
}

// StaticLocator always returns the same fix or error.
type StaticLocator struct {
	Position Position
	Err      error
}

// CurrentPosition returns the configured fix, stamped with the current time.
func (s StaticLocator) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if s.Err != nil {
		return Position{}, s.Err
	}
	p := s.Position
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	return p, nil
}

// Acquire requests a fix from locator, bounded by opts.Timeout.
//
// Every failure caused by the provider is returned as *Error. Cancellation of ctx
// by the caller is returned as ctx.Err() unchanged.
func Acquire(ctx context.Context, locator Locator, opts Options) (Position, error) {
	if locator == nil {
		return Position{}, &Error{Kind: KindUnavailable, Err: ErrNoLocator}
	}

	fixCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		fixCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	pos, err := locator.CurrentPosition(fixCtx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return Position{}, ctx.Err()
		}
		return Position{}, classify(err)
	}

	if err := ValidateCoordinates(pos.Latitude, pos.Longitude); err != nil {
		return Position{}, &Error{Kind: KindUnavailable, Err: err}
	}

	return pos, nil
}

func classify(err error) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnknown, Err: err}
}

// ValidateCoordinates checks latitude and longitude ranges.
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
		return fmt.Errorf("%w: lat=%v lng=%v", ErrInvalidCoordinates, lat, lng)
	}
	return nil
}
