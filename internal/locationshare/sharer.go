package locationshare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/connection"
	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

// Reply types.
const (
	replyReceived = "location_received"
	replyError    = "error"
)

// Submission is the single frame sent on the share socket.
type Submission struct {
	Action    string  `json:"action"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type reply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Sharer performs location share handshakes.
type Sharer struct {
	cfg     config.LocationShareConfig
	locator geo.Locator
	logger  *slog.Logger
	metrics *metrics.Metrics

	// newClient is swapped in tests.
	newClient func(connection.ClientConfig, *slog.Logger) connection.Client
}

// New creates a Sharer. m may be nil.
func New(cfg config.LocationShareConfig, locator geo.Locator, logger *slog.Logger, m *metrics.Metrics) *Sharer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sharer{
		cfg:       cfg,
		locator:   locator,
		logger:    logger,
		metrics:   m,
		newClient: connection.NewClient,
	}
}

// Share acquires the current position and submits it for token.
//
// It returns the submitted position on success. Errors are ErrInvalidToken,
// *geo.Error, *ServerError, ErrTimeout, ErrClosedWithoutReply, a
// *connection.CloseError for abnormal closes, a wrapped dial error, or
// ctx.Err().
func (s *Sharer) Share(ctx context.Context, token string) (geo.Position, error) {
	start := time.Now()
	logger := s.logger.With("token", auth.Redact(token))

	pos, err := s.share(ctx, token, logger)

	s.metrics.RecordLocationShare(resultLabel(err), time.Since(start))
	if err != nil {
		logger.Warn("location share failed", "error", err, "duration", time.Since(start))
		return geo.Position{}, err
	}

	logger.Info("location shared",
		"latitude", pos.Latitude,
		"longitude", pos.Longitude,
		"duration", time.Since(start),
	)
	return pos, nil
}

func (s *Sharer) share(ctx context.Context, token string, logger *slog.Logger) (geo.Position, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return geo.Position{}, ErrInvalidToken
	}

	pos, err := geo.Acquire(ctx, s.locator, s.geoOptions())
	if err != nil {
		return geo.Position{}, err
	}
	logger.Debug("position acquired", "accuracy_m", pos.AccuracyMeters)

	if err := s.submit(ctx, token, pos, logger); err != nil {
		return geo.Position{}, err
	}
	return pos, nil
}

// submit runs the socket half of the handshake. The reply timeout covers the
// dial as well as the wait.
func (s *Sharer) submit(ctx context.Context, token string, pos geo.Position, logger *slog.Logger) error {
	timeout := s.cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = config.DefaultReplyTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := s.newClient(connection.ClientConfig{
		URL:              connection.TokenURL(s.cfg.WSURL, token),
		Header:           http.Header{"User-Agent": []string{version.UserAgent()}},
		HandshakeTimeout: timeout,
		WriteTimeout:     5 * time.Second,
		BufferSize:       8,
	}, logger)
	defer client.Close()

	if err := client.Connect(waitCtx); err != nil {
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return ErrTimeout
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("connect: %w", err)
	}

	if err := client.SendJSON(Submission{
		Action:    "share_location",
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
	}); err != nil {
		return fmt.Errorf("send location: %w", err)
	}

	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrTimeout

		case msg := <-client.Messages():
			if done, err := settle(msg.Data, logger); done {
				return err
			}

		case err := <-client.Errors():
			return closeOutcome(client, err, logger)
		}
	}
}

// closeOutcome settles a handshake whose socket ended. Replies read before
// the close still count.
func closeOutcome(client connection.Client, err error, logger *slog.Logger) error {
	for {
		select {
		case msg := <-client.Messages():
			if done, rerr := settle(msg.Data, logger); done {
				return rerr
			}
		default:
			var ce *connection.CloseError
			if errors.As(err, &ce) && ce.Normal() {
				return ErrClosedWithoutReply
			}
			return err
		}
	}
}

// settle interprets one frame. done is false for frames that do not decide
// the outcome.
func settle(data []byte, logger *slog.Logger) (done bool, err error) {
	var r reply
	if err := json.Unmarshal(data, &r); err != nil {
		logger.Debug("ignoring malformed reply", "error", err)
		return false, nil
	}

	switch r.Type {
	case replyReceived:
		return true, nil
	case replyError:
		return true, &ServerError{Message: r.Message}
	default:
		logger.Debug("ignoring reply", "type", r.Type)
		return false, nil
	}
}

func (s *Sharer) geoOptions() geo.Options {
	opts := geo.DefaultOptions()
	if s.cfg.GeolocationTimeout > 0 {
		opts.Timeout = s.cfg.GeolocationTimeout
	}
	if s.cfg.HighAccuracy != nil {
		opts.HighAccuracy = *s.cfg.HighAccuracy
	}
	return opts
}
