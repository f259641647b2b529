package connection

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no pong)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrAlreadyStarted  = errors.New("already started")
)

// Close codes the client distinguishes.
const (
	CloseNormal   = websocket.CloseNormalClosure   // 1000
	CloseAbnormal = websocket.CloseAbnormalClosure // 1006, no close frame received
)

// CloseError reports how a socket ended.
// Network failures without a close frame carry CloseAbnormal.
type CloseError struct {
	Code int
	Text string
	Err  error
}

func (e *CloseError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("websocket closed: %d %s", e.Code, e.Text)
	}
	if e.Err != nil && e.Code == CloseAbnormal {
		return fmt.Sprintf("websocket closed: %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("websocket closed: %d", e.Code)
}

func (e *CloseError) Unwrap() error {
	return e.Err
}

// Normal reports whether the peer closed with code 1000.
func (e *CloseError) Normal() bool {
	return e.Code == CloseNormal
}

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Full WebSocket URL including the token path
	Header           http.Header   // Extra handshake headers (User-Agent etc.)
	HandshakeTimeout time.Duration // Max time for the opening handshake
	PingInterval     time.Duration // Keepalive ping period (0 disables pings)
	PingTimeout      time.Duration // Max time without pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		PingTimeout:      90 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       256,
	}
}

// ReconnectorConfig configures a Reconnector.
type ReconnectorConfig struct {
	Client    ClientConfig
	BaseDelay time.Duration // First reconnect delay, restored after every successful open
	MaxDelay  time.Duration // Ceiling for the doubled delay
}

// DefaultReconnectorConfig returns sensible defaults.
func DefaultReconnectorConfig() ReconnectorConfig {
	return ReconnectorConfig{
		Client:    DefaultClientConfig(),
		BaseDelay: 1 * time.Second,
		MaxDelay:  30 * time.Second,
	}
}

// Session identifies one socket attempt of a Reconnector.
type Session struct {
	ID      string    // Random id used to correlate log lines
	Attempt int       // Consecutive failed attempts before this one
	Started time.Time // When the dial began
}

// State is a point-in-time snapshot of a Reconnector.
type State struct {
	Connected        bool
	ReconnectPending bool
	NextDelay        time.Duration // Delay the next unplanned close will wait
	Attempts         int           // Consecutive failed attempts since the last open
	Stopped          bool
}
