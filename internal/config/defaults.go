package config

import (
	"os"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultPublicURL          = "https://api.yolpaketi.com"
	DefaultInsuranceURL       = "https://api.yolsepetigo.com/insurance"
	DefaultAPITimeout         = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 1 * time.Second
	DefaultTrackingWSURL      = "wss://api.yolsepetigo.com/ws/requests"
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultHandshakeTimeout   = 10 * time.Second
	DefaultPingInterval       = 30 * time.Second
	DefaultPingTimeout        = 90 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultBufferSize         = 256
	DefaultLocationWSURL      = "wss://api.yolsepetigo.com/ws/location-share"
	DefaultReplyTimeout       = 10 * time.Second
	DefaultGeolocationTimeout = 15 * time.Second
	DefaultPollConcurrency    = 4
	DefaultPollTimeout        = 10 * time.Second
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultJournalBatchSize   = 100
	DefaultJournalFlush       = 2 * time.Second
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.PublicURL == "" {
		c.API.PublicURL = DefaultPublicURL
	}
	if c.API.InsuranceURL == "" {
		c.API.InsuranceURL = DefaultInsuranceURL
	}
	if c.API.APIKey == "" {
		c.API.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Tracking defaults
	if c.Tracking.WSURL == "" {
		c.Tracking.WSURL = DefaultTrackingWSURL
	}
	if c.Tracking.ReconnectBaseDelay == 0 {
		c.Tracking.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Tracking.ReconnectMaxDelay == 0 {
		c.Tracking.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Tracking.HandshakeTimeout == 0 {
		c.Tracking.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Tracking.PingInterval == 0 {
		c.Tracking.PingInterval = DefaultPingInterval
	}
	if c.Tracking.PingTimeout == 0 {
		c.Tracking.PingTimeout = DefaultPingTimeout
	}
	if c.Tracking.WriteTimeout == 0 {
		c.Tracking.WriteTimeout = DefaultWriteTimeout
	}
	if c.Tracking.BufferSize == 0 {
		c.Tracking.BufferSize = DefaultBufferSize
	}

	// Location share defaults
	if c.LocationShare.WSURL == "" {
		c.LocationShare.WSURL = DefaultLocationWSURL
	}
	if c.LocationShare.ReplyTimeout == 0 {
		c.LocationShare.ReplyTimeout = DefaultReplyTimeout
	}
	if c.LocationShare.GeolocationTimeout == 0 {
		c.LocationShare.GeolocationTimeout = DefaultGeolocationTimeout
	}
	if c.LocationShare.HighAccuracy == nil {
		highAccuracy := true
		c.LocationShare.HighAccuracy = &highAccuracy
	}

	// Poller defaults
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Journal defaults
	applyDBDefaults(&c.Journal.Database)
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = DefaultJournalBatchSize
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = DefaultJournalFlush
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
