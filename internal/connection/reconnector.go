package connection

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handler receives socket lifecycle callbacks from a Reconnector.
//
// All calls for one Reconnector come from its run goroutine, in order, and never
// overlap. No call is made after Stop.
type Handler interface {
	// HandleOpen is called after a socket opens.
	HandleOpen(s Session)

	// HandleMessage is called for every frame, in arrival order.
	HandleMessage(s Session, msg TimestampedMessage)

	// HandleClose is called after an unplanned close or a failed dial,
	// once the next attempt has been scheduled retryIn from now.
	HandleClose(s Session, err error, retryIn time.Duration)
}

// Reconnector keeps one logical WebSocket subscription alive across failures.
type Reconnector struct {
	cfg     ReconnectorConfig
	handler Handler
	logger  *slog.Logger

	// newClient is swapped in tests.
	newClient func(ClientConfig, *slog.Logger) Client

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	started   bool
	alive     bool
	client    Client      // live socket, nil while dialing or waiting
	timer     *time.Timer // pending reconnect, nil while a socket exists
	connected bool
	backoff   *Backoff
	attempts  int
}

// NewReconnector creates a Reconnector. It does not dial until Start.
func NewReconnector(cfg ReconnectorConfig, handler Handler, logger *slog.Logger) *Reconnector {
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconnector{
		cfg:       cfg,
		handler:   handler,
		logger:    logger,
		newClient: NewClient,
		done:      make(chan struct{}),
		alive:     true,
		backoff:   NewBackoff(cfg.BaseDelay, cfg.MaxDelay),
	}
}

// Start dials immediately and keeps reconnecting until Stop or ctx is done.
func (r *Reconnector) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.alive {
		return ErrAlreadyClosed
	}
	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true
	r.ctx, r.cancel = context.WithCancel(ctx)

	go r.run()

	return nil
}

// Stop tears down the subscription: it closes the live socket, cancels the
// pending reconnect and prevents any further dial or Handler call. It is
// idempotent, does not block, and is safe to call from a Handler. A Handler
// call already running when Stop returns completes before Done is closed.
func (r *Reconnector) Stop() {
	r.mu.Lock()
	if !r.alive {
		r.mu.Unlock()
		return
	}
	r.alive = false
	c := r.client
	r.client = nil
	r.connected = false
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	started := r.started
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		c.Close()
	}
	if !started {
		close(r.done)
	}
}

// Done is closed once the run goroutine has exited after Stop, so no Handler
// call is in progress.
func (r *Reconnector) Done() <-chan struct{} {
	return r.done
}

// IsConnected reports whether a socket is currently open.
func (r *Reconnector) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// State returns a snapshot of the connection state.
func (r *Reconnector) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		Connected:        r.connected,
		ReconnectPending: r.timer != nil,
		NextDelay:        r.backoff.Current(),
		Attempts:         r.attempts,
		Stopped:          !r.alive,
	}
}

// run is the connection loop: dial, pump, wait, repeat.
func (r *Reconnector) run() {
	defer close(r.done)

	for {
		r.mu.Lock()
		if !r.alive {
			r.mu.Unlock()
			return
		}
		session := Session{
			ID:      uuid.NewString(),
			Attempt: r.attempts,
			Started: time.Now(),
		}
		r.mu.Unlock()

		logger := r.logger.With("session", session.ID)
		c := r.newClient(r.cfg.Client, logger)

		err := c.Connect(r.ctx)
		if err == nil {
			if !r.adopt(c) {
				// Stopped while the handshake was in flight.
				c.Close()
				return
			}
			logger.Info("websocket opened", "attempt", session.Attempt)
			r.dispatch(func() { r.handler.HandleOpen(session) })

			err = r.pump(session, c)
			r.release(c)
			c.Close()
		}

		if r.ctx.Err() != nil {
			return
		}

		timer, delay, ok := r.schedule()
		if !ok {
			return
		}
		logger.Warn("websocket closed, scheduling reconnect",
			"error", err,
			"retry_in", delay,
			"attempt", session.Attempt+1,
		)
		r.dispatch(func() { r.handler.HandleClose(session, err, delay) })

		select {
		case <-r.ctx.Done():
			r.clearTimer(timer)
			return
		case <-timer.C:
			r.clearTimer(timer)
		}
	}
}

// adopt records c as the live socket unless the Reconnector was stopped.
func (r *Reconnector) adopt(c Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.alive {
		return false
	}
	r.client = c
	r.connected = true
	r.attempts = 0
	r.backoff.Reset()
	return true
}

// release forgets c once it has stopped delivering.
func (r *Reconnector) release(c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == c {
		r.client = nil
	}
	r.connected = false
}

// schedule arms the single reconnect timer and advances the backoff.
func (r *Reconnector) schedule() (*time.Timer, time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.alive {
		return nil, 0, false
	}
	delay := r.backoff.Next()
	r.attempts++
	r.timer = time.NewTimer(delay)
	return r.timer, delay, true
}

func (r *Reconnector) clearTimer(t *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.Stop()
	if r.timer == t {
		r.timer = nil
	}
}

// pump delivers messages until the socket fails or the Reconnector stops.
func (r *Reconnector) pump(session Session, c Client) error {
	for {
		select {
		case <-r.ctx.Done():
			return r.ctx.Err()

		case err := <-c.Errors():
			// Frames read before the failure are already buffered.
			for {
				select {
				case msg := <-c.Messages():
					r.dispatch(func() { r.handler.HandleMessage(session, msg) })
				default:
					return err
				}
			}

		case msg := <-c.Messages():
			r.dispatch(func() { r.handler.HandleMessage(session, msg) })
		}
	}
}

// dispatch runs fn only while the Reconnector is alive.
func (r *Reconnector) dispatch(fn func()) {
	r.mu.Lock()
	alive := r.alive
	r.mu.Unlock()
	if alive {
		fn()
	}
}
