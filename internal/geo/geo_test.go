package geo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func TestAcquire_Success(t *testing.T) {
	loc := StaticLocator{Position: Position{Latitude: 41.0082, Longitude: 28.9784}}

	pos, err := Acquire(context.Background(), loc, DefaultOptions())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if pos.Latitude != 41.0082 || pos.Longitude != 28.9784 {
		t.Errorf("position = %+v, want 41.0082,28.9784", pos)
	}
	if pos.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestAcquire_PassesOptions(t *testing.T) {
	var got Options
	loc := LocatorFunc(func(ctx context.Context, opts Options) (Position, error) {
		got = opts
		return Position{Latitude: 1, Longitude: 2}, nil
	})

	if _, err := Acquire(context.Background(), loc, DefaultOptions()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !got.HighAccuracy {
		t.Error("HighAccuracy should be true")
	}
	if got.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", got.Timeout)
	}
	if got.MaximumAge != 0 {
		t.Errorf("MaximumAge = %v, want 0", got.MaximumAge)
	}
}

func TestAcquire_ErrorKinds(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		locator Locator
		want    ErrorKind
	}{
		{
			name:    "nil locator",
			locator: nil,
			want:    KindUnavailable,
		},
		{
			name:    "permission denied",
			locator: StaticLocator{Err: PermissionDenied(nil)},
			want:    KindPermissionDenied,
		},
		{
			name:    "unavailable",
			locator: StaticLocator{Err: Unavailable(boom)},
			want:    KindUnavailable,
		},
		{
			name:    "unclassified error",
			locator: StaticLocator{Err: boom},
			want:    KindUnknown,
		},
		{
			name:    "invalid fix",
			locator: StaticLocator{Position: Position{Latitude: 95, Longitude: 10}},
			want:    KindUnavailable,
		},
		{
			name: "provider exceeds timeout",
			locator: LocatorFunc(func(ctx context.Context, opts Options) (Position, error) {
				<-ctx.Done()
				return Position{}, ctx.Err()
			}),
			want: KindTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Timeout = 20 * time.Millisecond

			_, err := Acquire(context.Background(), tt.locator, opts)
			if err == nil {
				t.Fatal("expected error")
			}
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("error %v is not *geo.Error", err)
			}
			if gerr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", gerr.Kind, tt.want)
			}
			if !IsKind(err, tt.want) {
				t.Errorf("IsKind(%v) = false", tt.want)
			}
			if gerr.UserMessage() == "" {
				t.Error("UserMessage should not be empty")
			}
		})
	}
}

func TestAcquire_CallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Acquire(ctx, StaticLocator{Position: Position{Latitude: 1, Longitude: 1}}, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		t.Error("caller cancellation should not be classified")
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lng float64
		ok       bool
	}{
		{0, 0, true},
		{-90, 180, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
	}
	for _, tt := range tests {
		err := ValidateCoordinates(tt.lat, tt.lng)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateCoordinates(%v, %v) = %v, want ok=%v", tt.lat, tt.lng, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("error %v should wrap ErrInvalidCoordinates", err)
		}
	}
}

func TestDistanceKm(t *testing.T) {
	if d := DistanceKm(41.0, 29.0, 41.0, 29.0); d > 1e-9 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}

	// Istanbul (Taksim) to Ankara (Kizilay) is roughly 350 km great-circle.
	d := DistanceKm(41.0369, 28.9850, 39.9208, 32.8541)
	if d < 340 || d > 360 {
		t.Errorf("DistanceKm = %v, want ~350", d)
	}
}

func TestErrorKindString(t *testing.T) {
	if KindPermissionDenied.String() != "permission_denied" {
		t.Errorf("String() = %q", KindPermissionDenied.String())
	}
	if ErrorKind(42).String() != "unknown" {
		t.Errorf("String() = %q", ErrorKind(42).String())
	}
}
