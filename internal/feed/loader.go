package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/base-swiper/internal/api"
	"github.com/rickgao/base-swiper/internal/metrics"
	"github.com/rickgao/base-swiper/internal/model"
)

// Errors
var (
	ErrFetchInFlight   = errors.New("feed fetch already in flight")
	ErrStaleGeneration = errors.New("feed result belongs to a previous generation")
)

// Fetcher is the market-data collaborator. *api.Client satisfies it.
type Fetcher interface {
	GetExplore(ctx context.Context, opts api.ExploreOptions) (*api.Page, error)
}

// Batch is the result of one load operation.
type Batch struct {
	Items      []model.Item
	Generation uint64
	Exhausted  bool // Set once the repeatable category stops yielding new coins
}

// Option configures a Loader.
type Option func(*Loader)

// WithRand sets the random source used for the scrambled-mode shuffle.
func WithRand(r *rand.Rand) Option {
	return func(l *Loader) {
		l.rand = r
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// Loader produces and extends a deck from the explore API.
type Loader struct {
	cfg     Config
	fetcher Fetcher
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	rand  *rand.Rand
	state loadState
}

// New creates a new Loader.
func New(cfg Config, fetcher Fetcher, logger *slog.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		rand:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		state:   newLoadState(1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the loader configuration.
func (l *Loader) Config() Config {
	return l.cfg
}

// Reset discards the current LoadState and starts a new generation. Fetches
// still outstanding from the old generation complete but are not applied.
func (l *Loader) Reset() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resetLocked()
}

func (l *Loader) resetLocked() uint64 {
	l.state = newLoadState(l.state.generation + 1)
	return l.state.generation
}

// Generation returns the current generation.
func (l *Loader) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.generation
}

// Step returns the sequence step the next LoadNext should request.
func (l *Loader) Step() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.step
}

// InFlight reports whether a LoadNext is outstanding in this generation.
func (l *Loader) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.inFlight
}

// Exhausted reports whether the repeatable category has run dry.
func (l *Loader) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.exhausted
}

// Loaded returns how many items this generation has produced.
func (l *Loader) Loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.nextID - 1
}

// LoadInitial starts a new generation and assembles its first deck.
//
// Scrambled mode fetches every category in parallel, concatenates the results
// in sequence order and shuffles the whole deck once. Progressive mode fetches
// the first InitialSteps categories in order without shuffling. A failed
// category contributes no items and never aborts its siblings.
func (l *Loader) LoadInitial(ctx context.Context) (Batch, error) {
	l.mu.Lock()
	gen := l.resetLocked()
	l.state.inFlight = true
	l.mu.Unlock()

	start := time.Now()

	var categories []model.Category
	var results []fetchResult
	if l.cfg.Mode == ModeScrambled {
		categories = l.cfg.Sequence
		results = l.fetchParallel(ctx, categories)
	} else {
		categories = l.cfg.Sequence[:min(l.cfg.InitialSteps, len(l.cfg.Sequence))]
		results = make([]fetchResult, len(categories))
		for i, cat := range categories {
			results[i] = l.fetch(ctx, cat, "")
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.generation != gen {
		l.metrics.StaleBatch("loader")
		return Batch{Generation: gen}, ErrStaleGeneration
	}
	l.state.inFlight = false

	var items []model.Item
	for i, cat := range categories {
		l.state.requested[cat] = true
		l.state.cursors[cat] = results[i].endCursor
		items = append(items, l.state.admit(results[i].items)...)
	}

	if l.cfg.Mode == ModeScrambled {
		// Fisher-Yates, exactly once per load cycle.
		l.rand.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}
	l.state.assignIDs(items)
	l.state.step = min(len(categories), len(l.cfg.Sequence)-1)

	l.logger.Info("initial deck loaded",
		"mode", l.cfg.Mode,
		"categories", len(categories),
		"items", len(items),
		"generation", gen,
		"next_step", l.state.step,
		"duration", time.Since(start),
	)

	return Batch{Items: items, Generation: gen}, nil
}

// LoadNext fetches exactly one more category's batch for the given sequence
// step and returns the batch plus the advanced step.
//
// A non-repeatable category that was already loaded is a no-op that still
// advances the step. The repeatable category keeps the step in place and pages
// forward each call until a page yields no unseen coins, at which point the
// loader is exhausted and further calls are no-ops.
func (l *Loader) LoadNext(ctx context.Context, step int) (Batch, int, error) {
	l.mu.Lock()
	gen := l.state.generation
	last := len(l.cfg.Sequence) - 1
	step = max(0, min(step, last))

	if l.state.exhausted {
		l.mu.Unlock()
		return Batch{Generation: gen, Exhausted: true}, step, nil
	}
	if l.state.inFlight {
		l.mu.Unlock()
		return Batch{Generation: gen}, step, ErrFetchInFlight
	}

	cat := l.cfg.Sequence[step]
	repeatable := step == last
	if !repeatable && l.state.requested[cat] {
		l.state.step = step + 1
		l.mu.Unlock()
		l.logger.Debug("category already loaded, skipping", "category", cat, "step", step)
		return Batch{Generation: gen}, step + 1, nil
	}

	l.state.inFlight = true
	after := l.state.cursors[cat]
	l.mu.Unlock()

	res := l.fetch(ctx, cat, after)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.generation != gen {
		l.metrics.StaleBatch("loader")
		l.logger.Debug("discarding stale batch", "category", cat, "generation", gen)
		return Batch{Generation: gen}, step, ErrStaleGeneration
	}
	l.state.inFlight = false
	l.state.requested[cat] = true
	if res.endCursor != "" {
		l.state.cursors[cat] = res.endCursor
	}

	items := l.state.admit(res.items)
	l.state.assignIDs(items)

	next := step + 1
	if repeatable {
		next = step
		if len(items) == 0 {
			l.state.exhausted = true
			l.metrics.FeedExhausted()
			l.logger.Info("feed exhausted", "category", cat, "generation", gen, "loaded", l.state.nextID-1)
		}
	}
	l.state.step = next

	return Batch{Items: items, Generation: gen, Exhausted: l.state.exhausted}, next, nil
}

type fetchResult struct {
	items     []model.Item
	endCursor string
}

// fetchParallel fetches categories concurrently. Results keep sequence order.
func (l *Loader) fetchParallel(ctx context.Context, categories []model.Category) []fetchResult {
	results := make([]fetchResult, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Parallelism)
	for i, cat := range categories {
		g.Go(func() error {
			// Failures are contained in fetch; siblings always run to completion.
			results[i] = l.fetch(gctx, cat, "")
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetch requests one page for a category. Any failure is logged and becomes
// an empty result.
func (l *Loader) fetch(ctx context.Context, cat model.Category, after string) fetchResult {
	if l.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	page, err := l.fetcher.GetExplore(ctx, api.ExploreOptions{
		ListType: cat.ListType(),
		Count:    l.cfg.PageSize,
		After:    after,
	})
	if err != nil {
		l.logger.Warn("failed to load category",
			"category", cat,
			"error", err,
			"duration", time.Since(start),
		)
		l.metrics.FetchCompleted(string(cat), "error")
		return fetchResult{}
	}

	items := api.ToItems(page.Nodes, cat)
	if len(items) == 0 {
		l.metrics.FetchCompleted(string(cat), "empty")
	} else {
		l.metrics.FetchCompleted(string(cat), "ok")
	}
	l.metrics.ItemsLoadedAdd(string(cat), len(items))

	l.logger.Debug("loaded category",
		"category", cat,
		"items", len(items),
		"malformed", page.Malformed,
		"duration", time.Since(start),
	)

	return fetchResult{items: items, endCursor: page.EndCursor}
}
