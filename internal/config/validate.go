package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validateURL("api.public_url", c.API.PublicURL, "http", "https"); err != nil {
		return err
	}
	if err := validateURL("api.insurance_url", c.API.InsuranceURL, "http", "https"); err != nil {
		return err
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if err := validateURL("tracking.ws_url", c.Tracking.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if c.Tracking.ReconnectBaseDelay <= 0 {
		return errors.New("tracking.reconnect_base_delay must be > 0")
	}
	if c.Tracking.ReconnectMaxDelay < c.Tracking.ReconnectBaseDelay {
		return fmt.Errorf("tracking.reconnect_max_delay (%s) cannot be below reconnect_base_delay (%s)",
			c.Tracking.ReconnectMaxDelay, c.Tracking.ReconnectBaseDelay)
	}
	if c.Tracking.BufferSize < 1 {
		return errors.New("tracking.buffer_size must be >= 1")
	}

	if err := validateURL("location_share.ws_url", c.LocationShare.WSURL, "ws", "wss"); err != nil {
		return err
	}
	if c.LocationShare.ReplyTimeout <= 0 {
		return errors.New("location_share.reply_timeout must be > 0")
	}
	if c.LocationShare.GeolocationTimeout <= 0 {
		return errors.New("location_share.geolocation_timeout must be > 0")
	}

	if c.Poller.Concurrency < 1 {
		return errors.New("poller.concurrency must be >= 1")
	}
	if c.Poller.Interval < 0 {
		return errors.New("poller.interval must be >= 0")
	}

	if c.Journal.Enabled {
		if err := c.Journal.Database.validate("journal.database"); err != nil {
			return err
		}
		if c.Journal.BatchSize < 1 {
			return errors.New("journal.batch_size must be >= 1")
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}

func validateURL(field, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s must use scheme %v, got %q", field, schemes, u.Scheme)
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
