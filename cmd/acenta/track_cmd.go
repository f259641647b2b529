package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kaan069/yolsepetigoAcenta/internal/api"
	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/database"
	"github.com/kaan069/yolsepetigoAcenta/internal/journal"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
	"github.com/kaan069/yolsepetigoAcenta/internal/poller"
	"github.com/kaan069/yolsepetigoAcenta/internal/tracking"
)

const shutdownTimeout = 10 * time.Second

type trackOptions struct {
	token     string
	requestID int64
}

func newTrackCmd(g *globalOptions) *cobra.Command {
	opts := &trackOptions{}

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Follow a request's live tracking stream",
		Long: `Follow a request's live tracking stream until interrupted.

Offers, withdrawals and status changes are printed as they arrive. With
--request-id, every status change triggers a re-fetch of the request over
the REST API. The connection reconnects with backoff on failures.

Examples:
  acenta track --token 8f14e45fceea167a
  acenta track --token 8f14e45fceea167a --request-id 501 --log-level=debug`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrack(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.token, "token", "", "Tracking token of the request (required)")
	cmd.Flags().Int64Var(&opts.requestID, "request-id", 0, "Request id to re-fetch on status changes")
	cmd.MarkFlagRequired("token")

	return cmd
}

func runTrack(cmd *cobra.Command, g *globalOptions, opts *trackOptions) error {
	token := strings.TrimSpace(opts.token)
	if token == "" {
		return fmt.Errorf("%w: --token is empty", errInvalidFlag)
	}

	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	out := &syncWriter{w: cmd.OutOrStdout()}

	// Re-fetch poller
	var p *poller.Poller
	if opts.requestID > 0 {
		client, err := g.newAPIClient(cfg, logger, m)
		if err != nil {
			return err
		}
		show := detailPrinter(out)
		p = poller.New(cfg.Poller, client, poller.DetailHandlerFunc(func(d api.InsuranceRequestDetail) error {
			if d.Status.Terminal() {
				p.Unwatch(d.RequestID)
			}
			return show.HandleDetail(d)
		}), logger)
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("start poller: %w", err)
		}
		p.Watch(opts.requestID)
	}

	// Event journal
	var (
		pool   *pgxpool.Pool
		writer *journal.Writer
	)
	if cfg.Journal.Enabled {
		logger.Info("connecting to journal database",
			"host", cfg.Journal.Database.Host,
			"port", cfg.Journal.Database.Port,
			"database", cfg.Journal.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Journal.Database)
		if err != nil {
			return fmt.Errorf("connect journal database: %w", err)
		}
		defer pool.Close()

		if err := journal.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		writer = journal.NewWriter(cfg.Journal, pool, logger)
		if err := writer.Start(ctx); err != nil {
			return fmt.Errorf("start journal: %w", err)
		}
	}

	conn := tracking.New(cfg.Tracking, tracking.Options{
		TrackingToken: token,
		Enabled:       true,
		Callbacks:     trackCallbacks(out, token, opts.requestID, p, writer),
	}, logger, m)

	eg, egCtx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           newHealthHandler(cfg.Metrics, m, conn, pool),
			ReadHeaderTimeout: 5 * time.Second,
		}

		eg.Go(func() error {
			logger.Info("starting metrics server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info("shutting down tracker")

		conn.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Callbacks feed the poller and journal; let the last one finish first.
		var errs []error
		if err := conn.Wait(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("wait for tracker: %w", err))
		}
		if p != nil {
			errs = append(errs, p.Stop(shutdownCtx))
		}
		if writer != nil {
			errs = append(errs, writer.Stop(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	logger.Info("tracker running", "request_id", opts.requestID, "journal", writer != nil)

	return eg.Wait()
}

// trackCallbacks prints every event and fans it out to the poller and journal.
func trackCallbacks(out io.Writer, token string, requestID int64, p *poller.Poller, w *journal.Writer) tracking.Callbacks {
	cb := tracking.Callbacks{
		OnNewOffer: func(o tracking.Offer) {
			fmt.Fprintf(out, "new offer #%d: %s (%s) %s TL, eta %d min\n",
				o.OfferID, o.DriverName, o.DriverPhone, o.Price, o.ETAMinutes)
		},
		OnOfferWithdrawn: func(offerID int64) {
			fmt.Fprintf(out, "offer #%d withdrawn\n", offerID)
		},
		OnStatusChange: func(t tracking.EventType) {
			fmt.Fprintf(out, "status changed: %s\n", t)
			if p != nil && requestID > 0 && t != tracking.EventConnectionEstablished {
				p.Refresh(requestID)
			}
		},
	}
	if w != nil {
		cb.OnEvent = func(ev tracking.Event) { w.Record(token, ev) }
	}
	return cb
}

// detailPrinter prints each re-fetched request.
func detailPrinter(out io.Writer) poller.DetailHandler {
	return poller.DetailHandlerFunc(func(d api.InsuranceRequestDetail) error {
		driver := "-"
		if d.Driver != nil {
			driver = derefOr(d.Driver.Name, "-")
		}
		price := "-"
		if d.Pricing != nil {
			price = derefOr(d.Pricing.EstimatedPrice, "-")
		}
		_, err := fmt.Fprintf(out, "request %d: %s (driver %s, price %s)\n", d.RequestID, d.Status, driver, price)
		return err
	})
}

// newHealthHandler serves metrics and a JSON health summary.
func newHealthHandler(cfg config.MetricsConfig, m *metrics.Metrics, conn *tracking.Connection, pool *pgxpool.Pool) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		state := conn.State()
		health.Components["tracking"] = map[string]any{
			"connected":         state.Connected,
			"reconnect_pending": state.ReconnectPending,
			"attempts":          state.Attempts,
			"next_delay":        state.NextDelay.String(),
		}
		if !state.Connected {
			health.Status = "degraded"
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["journal"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["journal"] = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}

// syncWriter serializes writes from the tracker and poller goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
