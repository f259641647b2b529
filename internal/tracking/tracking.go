package tracking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/connection"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

// Callbacks receive decoded events. Nil fields are skipped.
type Callbacks struct {
	OnNewOffer       func(Offer)
	OnOfferWithdrawn func(offerID int64)
	OnStatusChange   func(EventType)

	// OnEvent sees every decoded event before the typed callback.
	OnEvent func(Event)
}

// Options are the owner-supplied inputs of a Connection.
type Options struct {
	TrackingToken string
	Enabled       bool
	Callbacks     Callbacks
}

func (o Options) active() bool {
	return o.Enabled && o.TrackingToken != ""
}

// Connection is a reconnecting subscription to one request's event stream.
type Connection struct {
	cfg     config.TrackingConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Read at dispatch time so a socket always reports to the latest set.
	callbacks atomic.Pointer[Callbacks]

	mu      sync.Mutex
	token   string
	enabled bool
	closed  bool
	rc      *connection.Reconnector
	stream  *stream
	stopped []<-chan struct{} // Done channels of stopped Reconnectors still running
}

// New creates a Connection and connects at once if opts is enabled and
// carries a token. m may be nil.
func New(cfg config.TrackingConfig, opts Options, logger *slog.Logger, m *metrics.Metrics) *Connection {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connection{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
	cb := opts.Callbacks
	c.callbacks.Store(&cb)

	c.mu.Lock()
	c.token = opts.TrackingToken
	c.enabled = opts.Enabled
	if opts.active() {
		c.activate(opts.TrackingToken)
	}
	c.mu.Unlock()

	return c
}

// Update applies new options. The callback set is always replaced; the socket
// is torn down and re-established only when the token or Enabled changed.
// Update after Close does nothing.
func (c *Connection) Update(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	cb := opts.Callbacks
	c.callbacks.Store(&cb)

	if opts.TrackingToken == c.token && opts.Enabled == c.enabled {
		return
	}

	c.deactivate()
	c.token = opts.TrackingToken
	c.enabled = opts.Enabled
	if opts.active() {
		c.activate(opts.TrackingToken)
	}
}

// Close tears the subscription down for good. It is idempotent, does not
// block, and may be called from a callback. No callback starts after Close
// returns, but one already running finishes on its own goroutine; use Wait
// to block until it has.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.deactivate()
}

// Wait blocks until every stopped subscription has finished its last
// callback, or ctx is done. It must not be called from a callback.
func (c *Connection) Wait(ctx context.Context) error {
	c.mu.Lock()
	pending := append([]<-chan struct{}(nil), c.stopped...)
	c.mu.Unlock()

	for _, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// IsConnected reports whether a socket is currently open.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	rc := c.rc
	c.mu.Unlock()

	return rc != nil && rc.IsConnected()
}

// State returns a snapshot of the underlying socket state.
func (c *Connection) State() connection.State {
	c.mu.Lock()
	rc := c.rc
	closed := c.closed
	c.mu.Unlock()

	if rc == nil {
		return connection.State{Stopped: closed}
	}
	return rc.State()
}

// activate starts a Reconnector for token. Caller holds mu.
func (c *Connection) activate(token string) {
	logger := c.logger.With("token", auth.Redact(token))
	s := &stream{conn: c, token: token, logger: logger}

	rc := connection.NewReconnector(c.reconnectorConfig(token), s, logger)
	if err := rc.Start(context.Background()); err != nil {
		logger.Error("failed to start tracking stream", "error", err)
		return
	}

	c.rc = rc
	c.stream = s
	logger.Info("tracking stream activated")
}

// deactivate stops the current Reconnector, if any. Caller holds mu.
func (c *Connection) deactivate() {
	if c.rc == nil {
		return
	}
	c.rc.Stop()
	c.trackStopped(c.rc.Done())
	c.stream.finish()
	c.stream.logger.Info("tracking stream deactivated")
	c.rc = nil
	c.stream = nil
}

// trackStopped remembers done and forgets channels that already closed.
// Caller holds mu.
func (c *Connection) trackStopped(done <-chan struct{}) {
	live := c.stopped[:0]
	for _, d := range c.stopped {
		select {
		case <-d:
		default:
			live = append(live, d)
		}
	}
	c.stopped = append(live, done)
}

func (c *Connection) reconnectorConfig(token string) connection.ReconnectorConfig {
	return connection.ReconnectorConfig{
		Client: connection.ClientConfig{
			URL:              connection.TokenURL(c.cfg.WSURL, token),
			Header:           http.Header{"User-Agent": []string{version.UserAgent()}},
			HandshakeTimeout: c.cfg.HandshakeTimeout,
			PingInterval:     c.cfg.PingInterval,
			PingTimeout:      c.cfg.PingTimeout,
			WriteTimeout:     c.cfg.WriteTimeout,
			BufferSize:       c.cfg.BufferSize,
		},
		BaseDelay: c.cfg.ReconnectBaseDelay,
		MaxDelay:  c.cfg.ReconnectMaxDelay,
	}
}

// stream is the connection.Handler for one activation.
type stream struct {
	conn   *Connection
	token  string
	logger *slog.Logger

	open atomic.Bool
}

func (s *stream) HandleOpen(session connection.Session) {
	s.open.Store(true)
	s.conn.metrics.TrackingOpened()
}

func (s *stream) HandleMessage(session connection.Session, msg connection.TimestampedMessage) {
	ev, err := Decode(msg.Data)
	if err != nil {
		s.conn.metrics.RecordDiscard(discardReason(err))
		s.logger.Debug("ignoring stream frame", "error", err)
		return
	}
	ev.ReceivedAt = msg.ReceivedAt
	s.conn.metrics.RecordMessage(string(ev.Type))

	cb := s.conn.callbacks.Load()
	if cb.OnEvent != nil {
		cb.OnEvent(ev)
	}

	switch {
	case ev.Type == EventNewOffer:
		if cb.OnNewOffer != nil {
			cb.OnNewOffer(*ev.Offer)
		}
	case ev.Type == EventOfferWithdrawn:
		if cb.OnOfferWithdrawn != nil {
			cb.OnOfferWithdrawn(ev.OfferID)
		}
	case ev.Type == EventConnectionEstablished || ev.Type.StatusChange():
		if cb.OnStatusChange != nil {
			cb.OnStatusChange(ev.Type)
		}
	}
}

func (s *stream) HandleClose(session connection.Session, err error, retryIn time.Duration) {
	s.finish()
	s.conn.metrics.RecordReconnect()

	var ce *connection.CloseError
	if errors.As(err, &ce) {
		s.logger.Debug("tracking socket closed", "code", ce.Code, "retry_in", retryIn)
	}
}

// finish accounts for an open socket going away, once.
func (s *stream) finish() {
	if s.open.CompareAndSwap(true, false) {
		s.conn.metrics.TrackingClosed()
	}
}
