package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/base-swiper/internal/feed"
	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/metrics"
	"github.com/rickgao/base-swiper/internal/model"
)

// Errors
var (
	ErrEmptyDeck       = errors.New("deck is empty")
	ErrNothingToRewind = errors.New("no decision to rewind")
)

// Source is the feed the controller refills from. *feed.Loader satisfies it.
type Source interface {
	LoadNext(ctx context.Context, step int) (feed.Batch, int, error)
	Step() int
	InFlight() bool
	Exhausted() bool
}

// Config holds controller configuration.
type Config struct {
	RefillThreshold  int // Refill when 0 < remaining <= threshold (default: 5)
	CaughtUpMinItems int // Deck length required before "all caught up" (default: 60)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RefillThreshold:  5,
		CaughtUpMinItems: 60,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.RefillThreshold < 1 {
		return errors.New("deck.refill_threshold must be >= 1")
	}
	if c.CaughtUpMinItems < 0 {
		return errors.New("deck.caught_up_min_items must be >= 0")
	}
	return nil
}

// Callback receives the item a decision was made on.
type Callback func(ctx context.Context, item model.Item)

// Option configures a Controller.
type Option func(*Controller)

// WithHaptics sets the feedback notifier pulsed on every decision.
func WithHaptics(n haptics.Notifier) Option {
	return func(c *Controller) {
		c.haptics = n
	}
}

// WithOnAccept sets the callback invoked for accepted items.
func WithOnAccept(cb Callback) Option {
	return func(c *Controller) {
		c.onAccept = cb
	}
}

// WithOnReject sets the callback invoked for rejected items.
func WithOnReject(cb Callback) Option {
	return func(c *Controller) {
		c.onReject = cb
	}
}

// WithOnChange sets a hook called after a background refill changes what
// the player can see: cards were appended or the deck became caught up.
func WithOnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// run is a contiguous batch of the deck, [start, end).
type run struct {
	start, end int
}

// move is enough of the presentation state to undo one decision.
type move struct {
	cursor   int
	runStart int
}

// Controller owns the deck, the cursor and the refill policy.
type Controller struct {
	cfg      Config
	source   Source
	logger   *slog.Logger
	metrics  *metrics.Metrics
	haptics  haptics.Notifier
	onAccept Callback
	onReject Callback
	onChange func()

	mu            sync.Mutex
	generation    uint64
	items         []model.Item
	cursor        int
	runStart      int
	queue         []run
	step          int
	caughtUp      bool
	caughtUpFired bool
	// refilling is reserved under mu before a refill goroutine starts.
	refilling bool
	last          *move

	wg sync.WaitGroup
}

// New creates a Controller with an empty deck.
func New(cfg Config, source Source, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		cfg:    cfg,
		source: source,
		logger: logger,
		cursor: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.haptics = haptics.BestEffort(c.haptics, logger, c.metrics)
	return c
}

// Reset atomically replaces the deck and cursor and starts a new generation.
// Refills requested under an older generation are discarded when they land.
// The start cursor is clamped into [-1, len(items)-1].
func (c *Controller) Reset(items []model.Item, start int) uint64 {
	step := c.source.Step()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.items = append([]model.Item(nil), items...)
	c.cursor = max(-1, min(start, len(c.items)-1))
	c.runStart = 0
	c.queue = nil
	c.step = step
	c.caughtUp = false
	c.caughtUpFired = false
	c.refilling = false
	c.last = nil

	return c.generation
}

// Present returns the item under the cursor, or false if none is left.
func (c *Controller) Present() (model.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor < 0 {
		return model.Item{}, false
	}
	return c.items[c.cursor], true
}

// Cursor returns the current cursor, -1 when the deck is spent.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Len returns the deck length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Generation returns the current deck generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Remaining returns how many cards are left to swipe, including queued runs.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *Controller) remainingLocked() int {
	n := 0
	if c.cursor >= 0 {
		n = c.cursor - c.runStart + 1
	}
	for _, r := range c.queue {
		n += r.end - r.start
	}
	return n
}

// CaughtUp reports whether the "all caught up" signal is latched.
func (c *Controller) CaughtUp() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caughtUp
}

// DismissCaughtUp clears the "all caught up" signal. It does not fire again
// in this generation.
func (c *Controller) DismissCaughtUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caughtUp = false
}

// Decide records a decision against the presented item and advances the
// cursor. The haptic pulse is best-effort. Callbacks run after the cursor
// has moved, then the refill policy is checked.
func (c *Controller) Decide(ctx context.Context, dir model.Direction) (model.Decision, error) {
	if dir != model.Accept && dir != model.Reject {
		return model.Decision{}, fmt.Errorf("unknown direction %q", dir)
	}

	c.mu.Lock()
	if c.cursor < 0 {
		c.mu.Unlock()
		return model.Decision{}, ErrEmptyDeck
	}

	item := c.items[c.cursor]
	decision := model.Decision{
		ID:         uuid.New(),
		Item:       item,
		Direction:  dir,
		Position:   c.cursor,
		Generation: c.generation,
		DecidedAt:  time.Now(),
	}
	c.last = &move{cursor: c.cursor, runStart: c.runStart}
	c.advanceLocked()
	c.checkCaughtUpLocked()
	c.mu.Unlock()

	_ = c.haptics.Notify(ctx, haptics.ImpactMedium)
	c.metrics.Decision(string(dir))

	switch dir {
	case model.Accept:
		if c.onAccept != nil {
			c.onAccept(ctx, item)
		}
	case model.Reject:
		if c.onReject != nil {
			c.onReject(ctx, item)
		}
	}

	c.maybeRefill(ctx)

	return decision, nil
}

// advanceLocked moves the cursor down one card, stepping onto the next queued
// run when the current one is used up.
func (c *Controller) advanceLocked() {
	c.cursor--
	if c.cursor >= c.runStart {
		return
	}
	if len(c.queue) == 0 {
		c.cursor = -1
		return
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	c.runStart = next.start
	c.cursor = next.end - 1
}

// Rewind undoes the cursor move of the most recent decision so its card is
// presented again. Only one decision can be rewound.
func (c *Controller) Rewind() (model.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return model.Item{}, ErrNothingToRewind
	}
	mv := *c.last
	c.last = nil

	// A run started since the decision goes back to the front of the queue.
	if c.cursor >= 0 && c.runStart != mv.runStart {
		c.queue = append([]run{{start: c.runStart, end: c.cursor + 1}}, c.queue...)
	}
	c.cursor = mv.cursor
	c.runStart = mv.runStart
	c.caughtUp = false
	c.caughtUpFired = false

	return c.items[c.cursor], nil
}

func (c *Controller) checkCaughtUpLocked() bool {
	if c.caughtUpFired || c.cursor >= 0 || len(c.items) < c.cfg.CaughtUpMinItems {
		return false
	}
	if !c.source.Exhausted() {
		return false
	}
	c.caughtUp = true
	c.caughtUpFired = true
	c.metrics.CaughtUp()
	c.logger.Info("deck caught up", "generation", c.generation, "items", len(c.items))
	return true
}

// maybeRefill starts one background LoadNext when few cards are left, or
// when none are left and the source still has more.
func (c *Controller) maybeRefill(ctx context.Context) {
	c.mu.Lock()
	remaining := c.remainingLocked()
	if remaining > c.cfg.RefillThreshold {
		c.mu.Unlock()
		return
	}
	if c.refilling || c.source.InFlight() || c.source.Exhausted() {
		c.mu.Unlock()
		return
	}
	c.refilling = true
	gen := c.generation
	c.wg.Add(1)
	c.mu.Unlock()

	c.metrics.RefillTriggered()
	c.logger.Debug("refilling deck", "remaining", remaining, "generation", gen)

	// Refills are never cancelled; a stale one is dropped when it lands.
	go c.refill(context.WithoutCancel(ctx), gen)
}

// releaseLocked drops the refill reservation unless a Reset already did.
func (c *Controller) releaseLocked(gen uint64) {
	if c.generation == gen {
		c.refilling = false
	}
}

func (c *Controller) refill(ctx context.Context, gen uint64) {
	defer c.wg.Done()

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return
	}
	step := c.step
	c.mu.Unlock()

	batch, next, err := c.source.LoadNext(ctx, step)
	if err != nil {
		c.mu.Lock()
		c.releaseLocked(gen)
		c.mu.Unlock()

		switch {
		case errors.Is(err, feed.ErrFetchInFlight):
		case errors.Is(err, feed.ErrStaleGeneration):
			c.metrics.StaleBatch("deck")
		default:
			c.logger.Warn("refill failed", "step", step, "error", err)
		}
		return
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.metrics.StaleBatch("deck")
		c.logger.Debug("discarding stale refill", "generation", gen, "items", len(batch.Items))
		return
	}
	c.refilling = false
	c.step = next
	appended := c.appendLocked(batch.Items)
	caughtUp := c.checkCaughtUpLocked()
	c.mu.Unlock()

	if (appended > 0 || caughtUp) && c.onChange != nil {
		c.onChange()
	}

	// Level-triggered: an empty batch on a spent deck steps to the next
	// category instead of stalling at -1.
	c.maybeRefill(ctx)
}

// appendLocked adds a batch as a new run. If nothing is left to swipe the run
// starts immediately; otherwise it queues and the cursor stays put.
func (c *Controller) appendLocked(items []model.Item) int {
	if len(items) == 0 {
		return 0
	}
	r := run{start: len(c.items), end: len(c.items) + len(items)}
	c.items = append(c.items, items...)

	if c.cursor < 0 {
		c.runStart = r.start
		c.cursor = r.end - 1
	} else {
		c.queue = append(c.queue, r)
	}
	return len(items)
}

// Wait blocks until all background refills have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}
