package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/api"
	"github.com/kaan069/yolsepetigoAcenta/internal/config"
)

// Fetcher reads one request's authoritative state. *api.Client implements it.
type Fetcher interface {
	GetInsuranceRequest(ctx context.Context, id int64) (*api.InsuranceRequestDetail, error)
}

// DetailHandler receives fetched request details.
type DetailHandler interface {
	HandleDetail(detail api.InsuranceRequestDetail) error
}

// DetailHandlerFunc is a function adapter for DetailHandler.
type DetailHandlerFunc func(api.InsuranceRequestDetail) error

func (f DetailHandlerFunc) HandleDetail(d api.InsuranceRequestDetail) error {
	return f(d)
}

// Poller fetches request details on demand and on a timer.
type Poller struct {
	cfg     config.PollerConfig
	fetcher Fetcher
	handler DetailHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	sem    chan struct{}
	wake   chan struct{}

	mu       sync.Mutex
	watched  map[int64]struct{}
	pending  map[int64]struct{}
	inflight map[int64]struct{}

	fetched atomic.Int64
	failed  atomic.Int64
}

// New creates a new Poller.
func New(cfg config.PollerConfig, fetcher Fetcher, handler DetailHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = config.DefaultPollConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultPollTimeout
	}
	return &Poller{
		cfg:      cfg,
		fetcher:  fetcher,
		handler:  handler,
		logger:   logger,
		sem:      make(chan struct{}, cfg.Concurrency),
		wake:     make(chan struct{}, 1),
		watched:  make(map[int64]struct{}),
		pending:  make(map[int64]struct{}),
		inflight: make(map[int64]struct{}),
	}
}

// Start begins the dispatch loop. Refreshes queued before Start run now.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("request poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("request poller stopped",
			"fetched", p.fetched.Load(),
			"errors", p.failed.Load(),
		)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh queues a fetch of request id. It reports false when a fetch for id
// is already queued and has not started yet.
func (p *Poller) Refresh(id int64) bool {
	p.mu.Lock()
	if _, ok := p.pending[id]; ok {
		p.mu.Unlock()
		return false
	}
	p.pending[id] = struct{}{}
	p.mu.Unlock()

	p.signal()
	return true
}

// Watch adds id to the periodic refresh set and refreshes it once.
func (p *Poller) Watch(id int64) {
	p.mu.Lock()
	p.watched[id] = struct{}{}
	p.mu.Unlock()

	p.Refresh(id)
}

// Unwatch removes id from the periodic refresh set.
func (p *Poller) Unwatch(id int64) {
	p.mu.Lock()
	delete(p.watched, id)
	p.mu.Unlock()
}

func (p *Poller) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// run is the dispatch loop.
func (p *Poller) run() {
	defer p.wg.Done()

	var tick <-chan time.Time
	if p.cfg.Interval > 0 {
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	p.dispatch()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-p.wake:
			p.dispatch()
		case <-tick:
			p.refreshWatched()
		}
	}
}

func (p *Poller) refreshWatched() {
	p.mu.Lock()
	ids := make([]int64, 0, len(p.watched))
	for id := range p.watched {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	for _, id := range ids {
		p.Refresh(id)
	}
}

// dispatch starts a fetch for every pending id that is not already in flight.
// Ids left pending are picked up when their running fetch finishes.
func (p *Poller) dispatch() {
	p.mu.Lock()
	var ids []int64
	for id := range p.pending {
		if _, busy := p.inflight[id]; busy {
			continue
		}
		delete(p.pending, id)
		p.inflight[id] = struct{}{}
		ids = append(ids, id)
	}
	p.mu.Unlock()

	for _, id := range ids {
		p.wg.Add(1)
		go p.fetch(id)
	}
}

func (p *Poller) fetch(id int64) {
	defer p.wg.Done()
	defer p.finish(id)

	// Acquire semaphore slot.
	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-p.ctx.Done():
		return
	}

	if err := p.refreshOne(id); err != nil {
		p.logger.Warn("failed to refresh request",
			"request_id", id,
			"err", err,
		)
		p.failed.Add(1)
		return
	}

	p.fetched.Add(1)
}

// finish releases id and wakes the loop if it was queued again meanwhile.
func (p *Poller) finish(id int64) {
	p.mu.Lock()
	delete(p.inflight, id)
	_, requeued := p.pending[id]
	p.mu.Unlock()

	if requeued {
		p.signal()
	}
}

// refreshOne fetches and handles a single request.
func (p *Poller) refreshOne(id int64) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	detail, err := p.fetcher.GetInsuranceRequest(ctx, id)
	if err != nil {
		return err
	}

	p.logger.Debug("request refreshed",
		"request_id", id,
		"status", detail.Status,
	)

	if p.handler != nil {
		if err := p.handler.HandleDetail(*detail); err != nil {
			return err
		}
	}

	return nil
}
