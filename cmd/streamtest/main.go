// streamtest connects to a request tracking stream and prints every raw frame
// with its decoded form. It uses a single socket and exits when it closes.
// Usage: go run ./cmd/streamtest --config configs/acenta.example.yaml --token <tracking-token>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/connection"
	"github.com/kaan069/yolsepetigoAcenta/internal/tracking"
	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	token := flag.String("token", "", "tracking token to follow")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if *token == "" {
		logger.Error("--token is required")
		os.Exit(2)
	}

	// Load config
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	client := connection.NewClient(connection.ClientConfig{
		URL:              connection.TokenURL(cfg.Tracking.WSURL, *token),
		Header:           http.Header{"User-Agent": []string{version.UserAgent()}},
		HandshakeTimeout: cfg.Tracking.HandshakeTimeout,
		PingInterval:     cfg.Tracking.PingInterval,
		PingTimeout:      cfg.Tracking.PingTimeout,
		WriteTimeout:     cfg.Tracking.WriteTimeout,
		BufferSize:       cfg.Tracking.BufferSize,
	}, logger)

	logger.Info("connecting", "url", connection.TokenURL(cfg.Tracking.WSURL, *token))
	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	var received, discarded int

	// Stats printer
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	logger.Info("streaming started - press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "received", received, "discarded", discarded)
			return

		case <-ticker.C:
			logger.Info("stats", "received", received, "discarded", discarded)

		case err := <-client.Errors():
			logger.Warn("stream closed", "error", err, "received", received, "discarded", discarded)
			return

		case msg := <-client.Messages():
			received++
			if !printFrame(msg, *verbose) {
				discarded++
			}
		}
	}
}

// printFrame prints one frame and reports whether it decoded.
func printFrame(msg connection.TimestampedMessage, verbose bool) bool {
	ts := msg.ReceivedAt.Format(time.RFC3339Nano)

	ev, err := tracking.Decode(msg.Data)
	if err != nil {
		fmt.Printf("[DISCARD] %s err=%v raw=%s\n", ts, err, msg.Data)
		return false
	}

	if verbose {
		data, _ := json.MarshalIndent(ev.Raw, "", "  ")
		fmt.Printf("[%s] %s\n%s\n", ev.Type, ts, data)
		return true
	}

	switch ev.Type {
	case tracking.EventNewOffer:
		fmt.Printf("[NEW_OFFER] %s id=%d driver=%s price=%s eta=%d\n",
			ts, ev.Offer.OfferID, ev.Offer.DriverName, ev.Offer.Price, ev.Offer.ETAMinutes)
	case tracking.EventOfferWithdrawn:
		fmt.Printf("[OFFER_WITHDRAWN] %s id=%d\n", ts, ev.OfferID)
	default:
		fmt.Printf("[STATUS] %s type=%s\n", ts, ev.Type)
	}
	return true
}
