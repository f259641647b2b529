package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kaan069/yolsepetigoAcenta/internal/config"
	"github.com/kaan069/yolsepetigoAcenta/internal/tracking"
)

// maxQueued bounds the events held while the database is slow or down.
const maxQueued = 10000

var columns = []string{"token", "event_type", "offer_id", "payload", "received_at"}

// Copier bulk-loads rows. *pgxpool.Pool implements it.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Entry is one journaled event.
type Entry struct {
	Token      string
	Event      tracking.Event
	ReceivedAt time.Time
}

// row is an Entry in column order.
type row struct {
	Token      string
	EventType  string
	OfferID    *int64
	Payload    []byte
	ReceivedAt time.Time
}

// Stats reports writer activity.
type Stats struct {
	Written int64 // Rows copied
	Flushes int64 // Successful COPY calls
	Errors  int64 // Failed COPY calls; their rows are lost
	Dropped int64 // Events discarded because the queue was full
	Queued  int   // Events waiting to be batched
}

// Writer batches tracking events and copies them into tracking_events.
type Writer struct {
	cfg    config.JournalConfig
	db     Copier
	logger *slog.Logger

	input *queue[Entry]

	batch   []row
	batchMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// NewWriter creates a Writer. It does not touch the database until Start.
func NewWriter(cfg config.JournalConfig, db Copier, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = config.DefaultJournalBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = config.DefaultJournalFlush
	}
	return &Writer{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  newQueue[Entry](cfg.BatchSize, maxQueued),
		batch:  make([]row, 0, cfg.BatchSize),
	}
}

// Record queues ev for token. It never blocks.
func (w *Writer) Record(token string, ev tracking.Event) {
	receivedAt := ev.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	w.input.push(Entry{Token: token, Event: ev, ReceivedAt: receivedAt})
}

// Start begins batching and writing.
func (w *Writer) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(2)
	go w.consumeLoop()
	go w.flushLoop()

	w.logger.Info("journal writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop stops the loops and writes everything still queued using ctx.
func (w *Writer) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("journal writer stop timed out")
		return ctx.Err()
	}

	w.drain(ctx)
	w.flush(ctx)

	stats := w.Stats()
	w.logger.Info("journal writer stopped",
		"written", stats.Written,
		"errors", stats.Errors,
		"dropped", stats.Dropped,
	)
	return nil
}

// Stats returns current counters.
func (w *Writer) Stats() Stats {
	w.statsMu.Lock()
	s := w.stats
	w.statsMu.Unlock()

	s.Dropped = w.input.droppedCount()
	s.Queued = w.input.len()
	return s
}

func (w *Writer) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.input.notify:
			w.drain(w.ctx)
		}
	}
}

func (w *Writer) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.flush(w.ctx)
		}
	}
}

// drain moves queued entries into the batch, flushing every full batch.
func (w *Writer) drain(ctx context.Context) {
	for {
		entries := w.input.take(w.cfg.BatchSize)
		if len(entries) == 0 {
			return
		}

		w.batchMu.Lock()
		for _, e := range entries {
			w.batch = append(w.batch, transform(e))
		}
		full := len(w.batch) >= w.cfg.BatchSize
		w.batchMu.Unlock()

		if full {
			w.flush(ctx)
		}
	}
}

// transform converts an Entry to a row.
func transform(e Entry) row {
	r := row{
		Token:      e.Token,
		EventType:  string(e.Event.Type),
		Payload:    e.Event.Raw,
		ReceivedAt: e.ReceivedAt.UTC(),
	}

	switch {
	case e.Event.Offer != nil:
		id := e.Event.Offer.OfferID
		r.OfferID = &id
	case e.Event.Type == tracking.EventOfferWithdrawn:
		id := e.Event.OfferID
		r.OfferID = &id
	}

	if len(r.Payload) == 0 {
		r.Payload = []byte(`{}`)
	}
	return r
}

// flush copies the current batch to the database.
func (w *Writer) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]row, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	src := pgx.CopyFromSlice(len(batch), func(i int) ([]any, error) {
		r := batch[i]
		return []any{r.Token, r.EventType, r.OfferID, r.Payload, r.ReceivedAt}, nil
	})

	n, err := w.db.CopyFrom(ctx, pgx.Identifier{Table}, columns, src)

	w.statsMu.Lock()
	if err != nil {
		w.stats.Errors++
	} else {
		w.stats.Written += n
		w.stats.Flushes++
	}
	w.statsMu.Unlock()

	if err != nil {
		w.logger.Error("journal copy failed", "error", err, "count", len(batch))
		return
	}

	w.logger.Debug("flushed tracking events",
		"count", n,
		"duration", time.Since(start),
	)
}
