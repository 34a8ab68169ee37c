package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/base-swiper/internal/metrics"
	"github.com/rickgao/base-swiper/internal/model"
)

// WriterConfig holds batch writer settings.
type WriterConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	BufferSize    int
}

// DefaultWriterConfig returns sensible defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     100,
		FlushInterval: time.Second,
		BufferSize:    1000,
	}
}

// WriterMetrics counts journal activity.
type WriterMetrics struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
	Dropped   int64
}

// BatchSender sends a pgx batch. *pgxpool.Pool satisfies it.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Option configures a DecisionWriter.
type Option func(*DecisionWriter)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *DecisionWriter) {
		w.prom = m
	}
}

// DecisionWriter journals swipe decisions to the decisions table.
type DecisionWriter struct {
	cfg    WriterConfig
	logger *slog.Logger
	prom   *metrics.Metrics

	// Input from sessions
	input *Buffer[model.Decision]

	// Database
	db BatchSender

	// Batching
	batch       []decisionRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// decisionRow is one row of the decisions table.
type decisionRow struct {
	DecisionID  string
	SessionID   string
	Generation  int64
	Position    int
	ItemID      int
	Category    string
	CoinAddress *string
	CoinName    string
	Direction   string
	DecidedAt   time.Time
}

// NewDecisionWriter creates a new DecisionWriter.
func NewDecisionWriter(cfg WriterConfig, db BatchSender, logger *slog.Logger, opts ...Option) *DecisionWriter {
	if logger == nil {
		logger = slog.Default()
	}
	w := &DecisionWriter{
		cfg:    cfg,
		db:     db,
		logger: logger,
		input:  NewBuffer[model.Decision](cfg.BufferSize),
		batch:  make([]decisionRow, 0, cfg.BatchSize),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Record queues a decision without blocking. Returns false if it was dropped.
func (w *DecisionWriter) Record(d model.Decision) bool {
	if w.input.Send(d) {
		return true
	}
	w.batchMu.Lock()
	w.metrics.Dropped++
	w.batchMu.Unlock()
	w.logger.Warn("decision journal full, dropping decision", "decision_id", d.ID)
	return false
}

// Start begins consuming decisions and writing to the database.
func (w *DecisionWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("decision writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer, writing everything still queued.
func (w *DecisionWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping decision writer")

	w.input.Close()
	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		w.logger.Warn("decision writer stop timed out")
	}

	// Final flush
	w.handleDecisions(w.input.Drain(0))
	w.flush(ctx)

	w.logger.Info("decision writer stopped", "inserts", w.Stats().Inserts)
	return nil
}

// Stats returns current metrics.
func (w *DecisionWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop moves queued decisions into the batch.
func (w *DecisionWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.input.Ready():
			for {
				decisions := w.input.Drain(w.cfg.BatchSize)
				if len(decisions) == 0 {
					break
				}
				w.handleDecisions(decisions)
			}
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *DecisionWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleDecisions transforms and adds decisions to the batch.
func (w *DecisionWriter) handleDecisions(decisions []model.Decision) {
	if len(decisions) == 0 {
		return
	}

	w.batchMu.Lock()
	for _, d := range decisions {
		w.batch = append(w.batch, w.transform(d))
	}
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	// After Stop the final flush picks the batch up with the caller's context.
	if shouldFlush && w.ctx != nil && w.ctx.Err() == nil {
		w.flush(w.ctx)
	}
}

// transform converts a Decision to a decisionRow.
func (w *DecisionWriter) transform(d model.Decision) decisionRow {
	row := decisionRow{
		DecisionID: d.ID.String(),
		SessionID:  d.SessionID.String(),
		Generation: int64(d.Generation),
		Position:   d.Position,
		ItemID:     d.Item.ID,
		Category:   string(d.Item.Category),
		CoinName:   d.Item.Name,
		Direction:  string(d.Direction),
		DecidedAt:  d.DecidedAt.UTC(),
	}
	if addr := d.Item.Address(); addr != "" {
		row.CoinAddress = &addr
	}
	return row
}

// flush writes the current batch to the database.
func (w *DecisionWriter) flush(ctx context.Context) {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]decisionRow, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	conflicts, err := w.batchInsert(ctx, batch)
	if err != nil {
		w.logger.Error("batch insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		w.prom.JournalFlushed("error")
		return
	}

	w.batchMu.Lock()
	w.metrics.Inserts += int64(len(batch) - conflicts)
	w.metrics.Conflicts += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()
	w.prom.JournalFlushed("ok")

	w.logger.Debug("flushed decisions",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (w *DecisionWriter) batchInsert(ctx context.Context, rows []decisionRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO decisions (decision_id, session_id, generation, position, item_id, category, coin_address, coin_name, direction, decided_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (decision_id) DO NOTHING
		`, r.DecisionID, r.SessionID, r.Generation, r.Position, r.ItemID, r.Category, r.CoinAddress, r.CoinName, r.Direction, r.DecidedAt)
	}

	results := w.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
