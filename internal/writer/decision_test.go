package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/base-swiper/internal/model"
)

// fakeDB records queued decision ids and reports repeats as conflicts.
type fakeDB struct {
	mu    sync.Mutex
	seen  map[string]bool
	rows  []string
	fail  error
	sends int
}

func newFakeDB() *fakeDB {
	return &fakeDB{seen: make(map[string]bool)}
}

func (f *fakeDB) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sends++
	res := &fakeResults{err: f.fail}
	if f.fail != nil {
		return res
	}
	for _, q := range b.QueuedQueries {
		id := q.Arguments[0].(string)
		if f.seen[id] {
			res.tags = append(res.tags, pgconn.NewCommandTag("INSERT 0 0"))
			continue
		}
		f.seen[id] = true
		f.rows = append(f.rows, id)
		res.tags = append(res.tags, pgconn.NewCommandTag("INSERT 0 1"))
	}
	return res
}

func (f *fakeDB) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeResults struct {
	tags []pgconn.CommandTag
	err  error
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	if r.err != nil {
		return pgconn.CommandTag{}, r.err
	}
	tag := r.tags[0]
	r.tags = r.tags[1:]
	return tag, nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error             { return nil }

func decision(dir model.Direction) model.Decision {
	return model.Decision{
		ID:         uuid.New(),
		SessionID:  uuid.New(),
		Item:       model.Item{ID: 3, Name: "Sunset", Category: model.CategoryNew, Coin: &model.MarketAttributes{Address: "0xabc"}},
		Direction:  dir,
		Position:   2,
		Generation: 4,
		DecidedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func stop(t *testing.T, w *DecisionWriter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestDecisionWriter_Transform(t *testing.T) {
	w := NewDecisionWriter(DefaultWriterConfig(), nil, nil)
	d := decision(model.Accept)

	row := w.transform(d)

	if row.DecisionID != d.ID.String() {
		t.Errorf("DecisionID = %s, want %s", row.DecisionID, d.ID)
	}
	if row.SessionID != d.SessionID.String() {
		t.Errorf("SessionID = %s, want %s", row.SessionID, d.SessionID)
	}
	if row.Generation != 4 || row.Position != 2 || row.ItemID != 3 {
		t.Errorf("row = %+v", row)
	}
	if row.Category != "NEW" || row.Direction != "accept" || row.CoinName != "Sunset" {
		t.Errorf("row = %+v", row)
	}
	if row.CoinAddress == nil || *row.CoinAddress != "0xabc" {
		t.Errorf("CoinAddress = %v, want 0xabc", row.CoinAddress)
	}
}

func TestDecisionWriter_Transform_NoCoin(t *testing.T) {
	w := NewDecisionWriter(DefaultWriterConfig(), nil, nil)
	d := decision(model.Reject)
	d.Item.Coin = nil

	if row := w.transform(d); row.CoinAddress != nil {
		t.Errorf("CoinAddress = %v, want nil", *row.CoinAddress)
	}
}

func TestDecisionWriter_FinalFlushOnStop(t *testing.T) {
	db := newFakeDB()
	cfg := WriterConfig{BatchSize: 100, FlushInterval: time.Hour, BufferSize: 10}
	w := NewDecisionWriter(cfg, db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if !w.Record(decision(model.Reject)) {
			t.Fatalf("Record #%d dropped", i)
		}
	}
	stop(t, w)

	if got := db.count(); got != 3 {
		t.Errorf("rows written = %d, want 3", got)
	}
	stats := w.Stats()
	if stats.Inserts != 3 || stats.Flushes != 1 {
		t.Errorf("Stats() = %+v, want 3 inserts in 1 flush", stats)
	}
}

func TestDecisionWriter_FlushesOnBatchSize(t *testing.T) {
	db := newFakeDB()
	cfg := WriterConfig{BatchSize: 2, FlushInterval: time.Hour, BufferSize: 10}
	w := NewDecisionWriter(cfg, db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stop(t, w)

	w.Record(decision(model.Accept))
	w.Record(decision(model.Reject))

	deadline := time.Now().Add(time.Second)
	for db.count() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("rows written = %d, want 2 before the flush interval", db.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDecisionWriter_FlushesOnInterval(t *testing.T) {
	db := newFakeDB()
	cfg := WriterConfig{BatchSize: 100, FlushInterval: 20 * time.Millisecond, BufferSize: 10}
	w := NewDecisionWriter(cfg, db, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer stop(t, w)

	w.Record(decision(model.Accept))

	deadline := time.Now().Add(time.Second)
	for db.count() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("decision not flushed by the ticker")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDecisionWriter_Conflicts(t *testing.T) {
	db := newFakeDB()
	w := NewDecisionWriter(DefaultWriterConfig(), db, nil)
	d := decision(model.Accept)

	w.handleDecisions([]model.Decision{d})
	w.flush(context.Background())
	w.handleDecisions([]model.Decision{d})
	w.flush(context.Background())

	stats := w.Stats()
	if stats.Inserts != 1 || stats.Conflicts != 1 || stats.Flushes != 2 {
		t.Errorf("Stats() = %+v, want 1 insert, 1 conflict, 2 flushes", stats)
	}
}

func TestDecisionWriter_InsertError(t *testing.T) {
	db := newFakeDB()
	db.fail = errors.New("connection reset")
	w := NewDecisionWriter(DefaultWriterConfig(), db, nil)

	w.handleDecisions([]model.Decision{decision(model.Reject)})
	w.flush(context.Background())

	if got := w.Stats().Errors; got != 1 {
		t.Errorf("Errors = %d, want 1", got)
	}
}

func TestDecisionWriter_DropsWhenFull(t *testing.T) {
	cfg := WriterConfig{BatchSize: 10, FlushInterval: time.Hour, BufferSize: 1}
	w := NewDecisionWriter(cfg, newFakeDB(), nil)

	if !w.Record(decision(model.Accept)) {
		t.Fatal("first Record dropped")
	}
	if w.Record(decision(model.Accept)) {
		t.Error("Record on a full journal = true, want false")
	}
	if got := w.Stats().Dropped; got != 1 {
		t.Errorf("Dropped = %d, want 1", got)
	}
}
