package config

import "time"

// Config is the root configuration for the acenta client.
type Config struct {
	API           APIConfig           `yaml:"api"`
	Tracking      TrackingConfig      `yaml:"tracking"`
	LocationShare LocationShareConfig `yaml:"location_share"`
	Poller        PollerConfig        `yaml:"poller"`
	Journal       JournalConfig       `yaml:"journal"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// APIConfig holds REST API settings.
type APIConfig struct {
	PublicURL    string        `yaml:"public_url"`    // OTP and public tow-truck requests
	InsuranceURL string        `yaml:"insurance_url"` // Partner (insurance company) API
	APIKey       string        `yaml:"api_key"`       // X-API-Key for partner endpoints
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// TrackingConfig holds request tracking stream settings.
type TrackingConfig struct {
	WSURL              string        `yaml:"ws_url"` // Base URL; the tracking token is appended
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	HandshakeTimeout   time.Duration `yaml:"handshake_timeout"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
}

// LocationShareConfig holds one-shot location share settings.
type LocationShareConfig struct {
	WSURL              string        `yaml:"ws_url"` // Base URL; the share token is appended
	ReplyTimeout       time.Duration `yaml:"reply_timeout"`
	GeolocationTimeout time.Duration `yaml:"geolocation_timeout"`
	HighAccuracy       *bool         `yaml:"high_accuracy"`
}

// PollerConfig holds request detail re-fetch settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"` // 0 disables periodic refresh
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// JournalConfig holds the optional tracking event journal.
type JournalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}
