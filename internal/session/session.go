package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/base-swiper/internal/deck"
	"github.com/rickgao/base-swiper/internal/feed"
	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/metrics"
	"github.com/rickgao/base-swiper/internal/model"
	"github.com/rickgao/base-swiper/internal/prefs"
	"github.com/rickgao/base-swiper/internal/trade"
)

// Errors
var (
	ErrNeedsLogin  = errors.New("wallet login required to buy")
	ErrNeedsAmount = errors.New("amount per swipe not set")
	ErrClosed      = errors.New("session closed")
)

// Journal records decisions. *writer.DecisionWriter satisfies it.
type Journal interface {
	Record(d model.Decision) bool
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Fetcher    feed.Fetcher
	FeedConfig feed.Config
	DeckConfig deck.Config
	Prefs      prefs.Store      // Defaults to an in-memory store
	Journal    Journal          // Optional
	Metrics    *metrics.Metrics // Optional
	Logger     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithHaptics sets where feedback pulses are delivered.
func WithHaptics(n haptics.Notifier) Option {
	return func(s *Session) {
		s.haptics = n
	}
}

// WithOnChange sets a hook called when a background refill changes the deck.
func WithOnChange(fn func()) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithFeedOptions passes options through to the session's Feed Loader.
func WithFeedOptions(opts ...feed.Option) Option {
	return func(s *Session) {
		s.feedOpts = append(s.feedOpts, opts...)
	}
}

// Result is the outcome of a swipe.
type Result struct {
	Decision model.Decision
	Intent   *trade.Intent // Set for an accepted card that can be bought
}

// Info is a point-in-time view of a session.
type Info struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Wallet    string    `json:"wallet,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Cursor    int       `json:"cursor"`
	DeckSize  int       `json:"deckSize"`
	Remaining int       `json:"remaining"`
	Exhausted bool      `json:"exhausted"`
	CaughtUp  bool      `json:"caughtUp"`
	Bought    int       `json:"bought"`
}

// Session is one player's swipe state.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	loader   *feed.Loader
	deck     *deck.Controller
	prefs    prefs.Store
	journal  Journal
	haptics  haptics.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	onChange func()
	feedOpts []feed.Option

	mu        sync.Mutex
	wallet    string
	amount    decimal.Decimal
	amountSet bool
	pending   *model.Item // Card the player tried to buy before login or amount
	buyList   []model.Item
	closed    bool
}

// New creates a session. Call Start to load its first deck.
func New(deps Deps, opts ...Option) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := deps.Prefs
	if store == nil {
		store = prefs.NewMemory()
	}

	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		prefs:     store,
		journal:   deps.Journal,
		metrics:   deps.Metrics,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.With("session", s.ID.String())
	s.haptics = haptics.BestEffort(s.haptics, s.logger, s.metrics)

	s.loader = feed.New(deps.FeedConfig, deps.Fetcher, s.logger,
		append([]feed.Option{feed.WithMetrics(s.metrics)}, s.feedOpts...)...)
	s.deck = deck.New(deps.DeckConfig, s.loader, s.logger,
		deck.WithHaptics(s.haptics),
		deck.WithMetrics(s.metrics),
		deck.WithOnChange(s.changed),
		deck.WithOnReject(func(_ context.Context, item model.Item) {
			s.logger.Debug("passed", "item", item.ID, "name", item.Name)
		}),
	)

	s.metrics.SessionOpened()
	return s
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Start loads the first deck and presents it from the top.
func (s *Session) Start(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	batch, err := s.loader.LoadInitial(ctx)
	if err != nil {
		return fmt.Errorf("load initial deck: %w", err)
	}
	s.deck.Reset(batch.Items, len(batch.Items)-1)

	s.logger.Info("session started", "cards", len(batch.Items), "generation", batch.Generation)
	return nil
}

// Refresh discards the deck and loads a fresh one.
func (s *Session) Refresh(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	// Invalidate outstanding refills before the loader starts over.
	s.deck.Reset(nil, -1)

	batch, err := s.loader.LoadInitial(ctx)
	if err != nil {
		_ = s.haptics.Notify(ctx, haptics.Error)
		return fmt.Errorf("refresh deck: %w", err)
	}
	s.deck.Reset(batch.Items, len(batch.Items)-1)
	_ = s.haptics.Notify(ctx, haptics.Success)

	s.logger.Info("deck refreshed", "cards", len(batch.Items), "generation", batch.Generation)
	return nil
}

// Current returns the presented card.
func (s *Session) Current() (model.Item, bool) {
	return s.deck.Present()
}

// Swipe decides on the presented card.
//
// An accept without a wallet or an amount is rewound and reported with
// ErrNeedsLogin or ErrNeedsAmount. An accepted card without a coin address
// stays decided and reports trade.ErrNoCoinAddress.
func (s *Session) Swipe(ctx context.Context, dir model.Direction) (Result, error) {
	if s.isClosed() {
		return Result{}, ErrClosed
	}

	d, err := s.deck.Decide(ctx, dir)
	if err != nil {
		return Result{}, err
	}
	d.SessionID = s.ID
	res := Result{Decision: d}

	if dir == model.Accept {
		if gateErr := s.gate(d.Item); gateErr != nil {
			if _, err := s.deck.Rewind(); err != nil {
				s.logger.Warn("failed to restore card", "item", d.Item.ID, "error", err)
			}
			return res, gateErr
		}
	}

	if s.journal != nil {
		s.journal.Record(d)
	}
	if dir == model.Reject {
		return res, nil
	}

	s.mu.Lock()
	s.buyList = append(s.buyList, d.Item)
	amount, wallet := s.amount, s.wallet
	s.mu.Unlock()

	intent, err := trade.NewIntent(d.Item, amount, wallet)
	if err != nil {
		s.logger.Warn("cannot build trade", "item", d.Item.ID, "error", err)
		return res, err
	}
	res.Intent = &intent

	s.logger.Info("buy requested",
		"item", d.Item.ID,
		"coin", intent.Buy.Address,
		"amount", intent.Amount.String(),
	)
	return res, nil
}

// gate checks that an accepted card can be bought and remembers it if not.
func (s *Session) gate(item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.wallet == "":
		s.pending = &item
		return ErrNeedsLogin
	case !s.amountSet:
		s.pending = &item
		return ErrNeedsAmount
	}
	return nil
}

// Rewind presents the last decided card again.
func (s *Session) Rewind() (model.Item, error) {
	return s.deck.Rewind()
}

// CaughtUp reports whether the "all caught up" signal is showing.
func (s *Session) CaughtUp() bool {
	return s.deck.CaughtUp()
}

// DismissCaughtUp hides the "all caught up" signal.
func (s *Session) DismissCaughtUp() {
	s.deck.DismissCaughtUp()
}

// Identify binds a wallet address and loads its saved amount. It reports
// whether an amount still needs to be set for a card the player tried to buy.
func (s *Session) Identify(ctx context.Context, address string) (needsAmount bool, err error) {
	if !trade.IsAddress(address) {
		return false, fmt.Errorf("%w: %q", trade.ErrInvalidAddress, address)
	}

	saved, ok, err := s.prefs.Get(ctx, address, prefs.KeyAmountPerSwipe)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	s.wallet = address
	if ok {
		if amount, err := trade.ParseAmount(saved); err == nil {
			s.amount, s.amountSet = amount, true
		} else {
			s.logger.Warn("ignoring saved amount", "value", saved, "error", err)
		}
	}
	persist := !ok && s.amountSet
	amount := s.amount
	needsAmount = s.pending != nil && !s.amountSet
	s.mu.Unlock()

	// An amount chosen before login follows the player to their wallet.
	if persist {
		if err := s.prefs.Set(ctx, address, prefs.KeyAmountPerSwipe, amount.String()); err != nil {
			return needsAmount, err
		}
	}

	s.logger.Info("wallet identified", "wallet", model.ShortAddress(address))
	return needsAmount, nil
}

// SetAmount validates and saves the USDC amount per accepted swipe.
func (s *Session) SetAmount(ctx context.Context, raw string) (decimal.Decimal, error) {
	amount, err := trade.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}

	s.mu.Lock()
	s.amount, s.amountSet = amount, true
	wallet := s.wallet
	hadPending := s.pending != nil
	s.pending = nil
	s.mu.Unlock()

	if wallet != "" {
		if err := s.prefs.Set(ctx, wallet, prefs.KeyAmountPerSwipe, amount.String()); err != nil {
			return amount, err
		}
	}
	if hadPending {
		_ = s.haptics.Notify(ctx, haptics.Success)
	}

	s.logger.Info("amount per swipe set", "amount", amount.String())
	return amount, nil
}

// Amount returns the amount per swipe and whether it is set.
func (s *Session) Amount() (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amount, s.amountSet
}

// Wallet returns the identified wallet address.
func (s *Session) Wallet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet
}

// BuyList returns the cards accepted so far.
func (s *Session) BuyList() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.buyList...)
}

// Notify delivers a best-effort feedback pulse.
func (s *Session) Notify(ctx context.Context, kind haptics.Kind) {
	_ = s.haptics.Notify(ctx, kind)
}

// Info returns a snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	info := Info{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Wallet:    s.wallet,
		Bought:    len(s.buyList),
	}
	if s.amountSet {
		info.Amount = s.amount.String()
	}
	s.mu.Unlock()

	info.Cursor = s.deck.Cursor()
	info.DeckSize = s.deck.Len()
	info.Remaining = s.deck.Remaining()
	info.Exhausted = s.loader.Exhausted()
	info.CaughtUp = s.deck.CaughtUp()
	return info
}

// Wait blocks until background refills finish.
func (s *Session) Wait() {
	s.deck.Wait()
}

// Close ends the session. Outstanding refills finish but are not applied.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.deck.Reset(nil, -1)
	s.deck.Wait()
	s.metrics.SessionClosed()
	s.logger.Info("session closed")
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
