package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kaan069/yolsepetigoAcenta/internal/api"
	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
)

var errInvalidFlag = errors.New("invalid flag")

// loadConfig loads, defaults and validates the configuration.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadAndValidate(o.configFile)
	if err != nil {
		return nil, &configError{err: err}
	}
	return cfg, nil
}

// newLogger builds the process logger on stderr.
func (o *globalOptions) newLogger() (*slog.Logger, error) {
	level, err := parseLogLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: --log-level %q", errInvalidFlag, s)
	}
	return level, nil
}

// credential resolves the partner API key: --api-key-file, then config/env.
func (o *globalOptions) credential(cfg *config.Config) (auth.Credential, error) {
	if o.apiKeyFile != "" {
		key, err := auth.LoadAPIKey(o.apiKeyFile)
		if err != nil {
			return nil, err
		}
		return key, nil
	}
	if cfg.API.APIKey != "" {
		return auth.APIKey(cfg.API.APIKey), nil
	}
	return nil, nil
}

// newAPIClient builds the REST client from cfg.
func (o *globalOptions) newAPIClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*api.Client, error) {
	cred, err := o.credential(cfg)
	if err != nil {
		return nil, err
	}

	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithMetrics(m),
	}
	if cred != nil {
		opts = append(opts, api.WithCredential(cred))
	}

	return api.NewClient(api.Endpoints{
		Public:    cfg.API.PublicURL,
		Insurance: cfg.API.InsuranceURL,
	}, opts...), nil
}

// setup runs the common preamble of every subcommand.
func (o *globalOptions) setup() (*config.Config, *slog.Logger, error) {
	logger, err := o.newLogger()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseRequestID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: request id %q must be a positive integer", errInvalidFlag, arg)
	}
	return id, nil
}

// confirm asks a yes/no question on the command's streams.
// Returns (true, nil) if the user confirms or force=true.
// Returns (false, error) if stdin is not a terminal and force is false.
func confirm(cmd *cobra.Command, question string, force bool) (bool, error) {
	if force {
		return true, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return false, fmt.Errorf("%w: --yes is required in non-interactive mode", errInvalidFlag)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes" || response == "e" || response == "evet", nil
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
