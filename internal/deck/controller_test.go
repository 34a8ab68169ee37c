package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/rickgao/base-swiper/internal/api"
	"github.com/rickgao/base-swiper/internal/feed"
	"github.com/rickgao/base-swiper/internal/haptics"
	"github.com/rickgao/base-swiper/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// exploreStub serves pages of unique coins. A handler may override a call.
type exploreStub struct {
	mu       sync.Mutex
	calls    []string
	override func(opts api.ExploreOptions, n int) (*api.Page, error)
}

func (s *exploreStub) GetExplore(ctx context.Context, opts api.ExploreOptions) (*api.Page, error) {
	s.mu.Lock()
	s.calls = append(s.calls, opts.ListType)
	n := len(s.calls)
	s.mu.Unlock()

	if s.override != nil {
		if p, err := s.override(opts, n); p != nil || err != nil {
			return p, err
		}
	}
	p := &api.Page{EndCursor: fmt.Sprintf("c%d", n)}
	for i := 0; i < opts.Count; i++ {
		p.Nodes = append(p.Nodes, api.ExploreNode{
			Name:    fmt.Sprintf("%s #%d", opts.ListType, i),
			Address: fmt.Sprintf("0x%s%03d%03d", opts.ListType, n, i),
		})
	}
	return p, nil
}

func (s *exploreStub) listTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func newLoader(t *testing.T, stub *exploreStub, seq ...model.Category) *feed.Loader {
	t.Helper()
	cfg := feed.DefaultConfig()
	cfg.Sequence = seq
	cfg.FetchTimeout = 5 * time.Second
	return feed.New(cfg, stub, nil)
}

// start loads the first deck and presents it from the top.
func start(t *testing.T, l *feed.Loader, c *Controller) {
	t.Helper()
	batch, err := l.LoadInitial(context.Background())
	if err != nil {
		t.Fatalf("LoadInitial() error = %v", err)
	}
	c.Reset(batch.Items, len(batch.Items)-1)
}

func decideN(t *testing.T, c *Controller, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := c.Decide(context.Background(), model.Reject); err != nil {
			t.Fatalf("Decide #%d error = %v", i+1, err)
		}
		c.Wait()
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestController_RefillAppendsWithoutMovingCursor(t *testing.T) {
	stub := &exploreStub{}
	l := newLoader(t, stub, model.CategoryFeatured, model.CategoryTopGainers, model.CategoryNew)
	c := New(DefaultConfig(), l, nil)
	start(t, l, c)

	if got := c.Cursor(); got != 19 {
		t.Fatalf("Cursor() = %d, want 19", got)
	}

	decideN(t, c, 14)
	if got := len(stub.listTypes()); got != 1 {
		t.Fatalf("fetches after 14 decisions = %d, want 1 (remaining 6 is above threshold)", got)
	}

	decideN(t, c, 1)

	if got := c.Cursor(); got != 4 {
		t.Errorf("Cursor() = %d, want 4", got)
	}
	if got := c.Len(); got != 40 {
		t.Errorf("Len() = %d, want 40", got)
	}
	if got := c.Remaining(); got != 25 {
		t.Errorf("Remaining() = %d, want 25", got)
	}
	if diff := cmp.Diff([]string{"FEATURED", "TOP_GAINERS"}, stub.listTypes()); diff != "" {
		t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
	}

	// The first batch is finished before the appended one starts at its top.
	decideN(t, c, 5)
	item, ok := c.Present()
	if !ok {
		t.Fatal("Present() = false after the first run")
	}
	if item.ID != 40 || item.Category != model.CategoryTopGainers {
		t.Errorf("Present() = id %d %s, want id 40 TOP_GAINERS", item.ID, item.Category)
	}
}

func TestController_CursorFlooredAtMinusOne(t *testing.T) {
	src := &fakeSource{exhausted: true}
	c := New(DefaultConfig(), src, nil)
	c.Reset(items(1, 3), 2)

	for n := 1; n <= 5; n++ {
		_, err := c.Decide(context.Background(), model.Accept)
		want := max(-1, 2-n)
		if got := c.Cursor(); got != want {
			t.Errorf("after %d decisions Cursor() = %d, want %d", n, got, want)
		}
		if n > 3 && !errors.Is(err, ErrEmptyDeck) {
			t.Errorf("Decide #%d error = %v, want ErrEmptyDeck", n, err)
		}
	}
	if _, ok := c.Present(); ok {
		t.Error("Present() = true on an empty deck")
	}
	if src.calls != 0 {
		t.Errorf("LoadNext calls = %d, want 0 on an exhausted source", src.calls)
	}
}

func TestController_SingleRefillInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	stub := &exploreStub{override: func(opts api.ExploreOptions, n int) (*api.Page, error) {
		if n == 2 {
			close(started)
			<-release
		}
		return nil, nil
	}}
	l := newLoader(t, stub, model.CategoryFeatured, model.CategoryTopGainers, model.CategoryNew)
	c := New(DefaultConfig(), l, nil)
	start(t, l, c)

	decideN(t, c, 14)
	if _, err := c.Decide(context.Background(), model.Reject); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	<-started
	waitFor(t, l.InFlight)

	for i := 0; i < 4; i++ {
		if _, err := c.Decide(context.Background(), model.Reject); err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
	}

	close(release)
	c.Wait()

	if diff := cmp.Diff([]string{"FEATURED", "TOP_GAINERS"}, stub.listTypes()); diff != "" {
		t.Errorf("fetches mismatch (-want +got):\n%s", diff)
	}
	if got := c.Len(); got != 40 {
		t.Errorf("Len() = %d, want 40", got)
	}
	// One card was left when the batch landed, so the cursor stayed on it.
	if got := c.Cursor(); got != 0 {
		t.Errorf("Cursor() = %d, want 0", got)
	}
}

func TestController_BackToBackDecisionsReserveOneRefill(t *testing.T) {
	// The source never reports in-flight, so only the controller's own
	// reservation keeps the later decisions from starting more refills.
	src := &fakeSource{batches: [][]model.Item{items(11, 30), items(31, 50)}, gate: make(chan struct{})}
	c := New(DefaultConfig(), src, nil)
	c.Reset(items(1, 10), 9)

	for i := 0; i < 9; i++ {
		if _, err := c.Decide(context.Background(), model.Reject); err != nil {
			t.Fatalf("Decide #%d error = %v", i+1, err)
		}
	}
	close(src.gate)
	c.Wait()

	if src.calls != 1 {
		t.Errorf("LoadNext calls = %d, want 1", src.calls)
	}
	if got := c.Len(); got != 30 {
		t.Errorf("Len() = %d, want 30", got)
	}
	if got := c.Remaining(); got != 21 {
		t.Errorf("Remaining() = %d, want 21", got)
	}
}

func TestController_EmptyRefillOnSpentDeckKeepsStepping(t *testing.T) {
	// A category that came back empty must not strand the deck at -1.
	src := &fakeSource{batches: [][]model.Item{{}, {}, items(2, 4)}}
	changes := 0
	c := New(DefaultConfig(), src, nil, WithOnChange(func() { changes++ }))
	c.Reset(items(1, 1), 0)

	if _, err := c.Decide(context.Background(), model.Accept); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	c.Wait()

	item, ok := c.Present()
	if !ok {
		t.Fatalf("Present() = false, want the refilled run (LoadNext calls = %d)", src.calls)
	}
	if item.ID != 4 {
		t.Errorf("Present() = id %d, want 4", item.ID)
	}
	if src.calls != 3 {
		t.Errorf("LoadNext calls = %d, want 3", src.calls)
	}
	if changes != 1 {
		t.Errorf("change notifications = %d, want 1", changes)
	}
	if c.CaughtUp() {
		t.Error("CaughtUp() = true while the source had more")
	}
}

func TestController_SpentDeckCatchesUpAfterEmptyRefill(t *testing.T) {
	src := &fakeSource{batches: [][]model.Item{{}}}
	changes := 0
	c := New(DefaultConfig(), src, nil, WithOnChange(func() { changes++ }))
	c.Reset(items(1, 60), 0)

	if _, err := c.Decide(context.Background(), model.Reject); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	c.Wait()

	if !c.CaughtUp() {
		t.Errorf("CaughtUp() = false after the source ran dry (LoadNext calls = %d)", src.calls)
	}
	if src.calls != 2 {
		t.Errorf("LoadNext calls = %d, want 2", src.calls)
	}
	if changes != 1 {
		t.Errorf("change notifications = %d, want 1", changes)
	}
}

func TestController_StaleRefillDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	stub := &exploreStub{override: func(opts api.ExploreOptions, n int) (*api.Page, error) {
		if n == 2 {
			close(started)
			<-release
		}
		return nil, nil
	}}
	l := newLoader(t, stub, model.CategoryFeatured, model.CategoryTopGainers, model.CategoryNew)
	c := New(DefaultConfig(), l, nil)
	start(t, l, c)
	oldGen := c.Generation()

	decideN(t, c, 14)
	if _, err := c.Decide(context.Background(), model.Reject); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	<-started

	fresh := items(1, 7)
	if gen := c.Reset(fresh, len(fresh)-1); gen != oldGen+1 {
		t.Errorf("Reset() generation = %d, want %d", gen, oldGen+1)
	}

	close(release)
	c.Wait()

	if got := c.Len(); got != 7 {
		t.Errorf("Len() = %d, want 7 (stale batch must not be appended)", got)
	}
	if got := c.Cursor(); got != 6 {
		t.Errorf("Cursor() = %d, want 6", got)
	}
}

func TestController_CaughtUpOnce(t *testing.T) {
	newCalls := 0
	stub := &exploreStub{override: func(opts api.ExploreOptions, n int) (*api.Page, error) {
		if opts.ListType == "NEW" {
			newCalls++
			if newCalls > 1 {
				return &api.Page{}, nil
			}
		}
		return nil, nil
	}}
	l := newLoader(t, stub, model.CategoryFeatured, model.CategoryTopGainers, model.CategoryNew)

	changes := 0
	c := New(DefaultConfig(), l, nil, WithOnChange(func() { changes++ }))
	start(t, l, c)

	decisions := 0
	for !c.CaughtUp() {
		if _, err := c.Decide(context.Background(), model.Reject); err != nil {
			t.Fatalf("Decide #%d error = %v", decisions+1, err)
		}
		c.Wait()
		decisions++
		if decisions > 100 {
			t.Fatal("deck never caught up")
		}
	}

	if decisions != 60 {
		t.Errorf("decisions = %d, want 60", decisions)
	}
	if !l.Exhausted() {
		t.Error("loader should be exhausted")
	}
	if diff := cmp.Diff([]string{"FEATURED", "TOP_GAINERS", "NEW", "NEW"}, stub.listTypes()); diff != "" {
		t.Errorf("fetches mismatch (-want +got):\n%s", diff)
	}
	if changes != 2 {
		t.Errorf("change notifications = %d, want 2", changes)
	}

	if _, err := c.Decide(context.Background(), model.Reject); !errors.Is(err, ErrEmptyDeck) {
		t.Errorf("Decide() on spent deck error = %v, want ErrEmptyDeck", err)
	}
	if !c.CaughtUp() {
		t.Error("caught-up signal should stay latched until dismissed")
	}

	c.DismissCaughtUp()
	_, _ = c.Decide(context.Background(), model.Reject)
	if c.CaughtUp() {
		t.Error("caught-up signal fired twice in one generation")
	}

	// A manual refresh starts a new generation that can catch up again.
	c.Reset(items(1, 60), -1)
	if c.CaughtUp() {
		t.Error("Reset() should clear the caught-up signal")
	}
}

func TestController_CaughtUpNeedsMinimumDeck(t *testing.T) {
	src := &fakeSource{exhausted: true}
	c := New(DefaultConfig(), src, nil)
	c.Reset(items(1, 10), 9)

	for i := 0; i < 10; i++ {
		if _, err := c.Decide(context.Background(), model.Reject); err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
	}
	if c.CaughtUp() {
		t.Error("CaughtUp() = true with only 10 items loaded")
	}
}

func TestController_Rewind(t *testing.T) {
	src := &fakeSource{batches: [][]model.Item{items(4, 6)}}
	c := New(DefaultConfig(), src, nil)
	c.Reset(items(1, 3), 2)
	ctx := context.Background()

	if _, err := c.Rewind(); !errors.Is(err, ErrNothingToRewind) {
		t.Errorf("Rewind() before any decision error = %v, want ErrNothingToRewind", err)
	}

	decide := func() model.Item {
		t.Helper()
		d, err := c.Decide(ctx, model.Accept)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		c.Wait()
		return d.Item
	}

	if got := decide().ID; got != 3 {
		t.Fatalf("first decision on id %d, want 3", got)
	}
	item, err := c.Rewind()
	if err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	if item.ID != 3 {
		t.Errorf("Rewind() = id %d, want 3", item.ID)
	}
	if _, err := c.Rewind(); !errors.Is(err, ErrNothingToRewind) {
		t.Errorf("second Rewind() error = %v, want ErrNothingToRewind", err)
	}

	// Swipe past the end of the first run onto the refilled one, then undo.
	var got []int
	for i := 0; i < 3; i++ {
		got = append(got, decide().ID)
	}
	if diff := cmp.Diff([]int{3, 2, 1}, got); diff != "" {
		t.Errorf("decision order mismatch (-want +got):\n%s", diff)
	}
	if p, _ := c.Present(); p.ID != 6 {
		t.Fatalf("Present() = id %d, want 6", p.ID)
	}

	if item, err := c.Rewind(); err != nil || item.ID != 1 {
		t.Fatalf("Rewind() = id %d, %v; want id 1", item.ID, err)
	}
	if got := c.Remaining(); got != 4 {
		t.Errorf("Remaining() = %d, want 4", got)
	}

	got = got[:0]
	for i := 0; i < 4; i++ {
		got = append(got, decide().ID)
	}
	if diff := cmp.Diff([]int{1, 6, 5, 4}, got); diff != "" {
		t.Errorf("decision order after rewind mismatch (-want +got):\n%s", diff)
	}
}

func TestController_CallbacksAndHaptics(t *testing.T) {
	var accepted, rejected []int
	var pulses []haptics.Kind
	src := &fakeSource{exhausted: true}

	c := New(DefaultConfig(), src, nil,
		WithOnAccept(func(_ context.Context, it model.Item) { accepted = append(accepted, it.ID) }),
		WithOnReject(func(_ context.Context, it model.Item) { rejected = append(rejected, it.ID) }),
		WithHaptics(haptics.Func(func(_ context.Context, k haptics.Kind) error {
			pulses = append(pulses, k)
			return errors.New("haptics unavailable")
		})),
	)
	c.Reset(items(1, 3), 2)

	ctx := context.Background()
	d, err := c.Decide(ctx, model.Accept)
	if err != nil {
		t.Fatalf("Decide() error = %v, want haptic failure swallowed", err)
	}
	if d.Position != 2 || d.Direction != model.Accept || d.Generation != c.Generation() {
		t.Errorf("Decision = %+v", d)
	}
	if _, err := c.Decide(ctx, model.Reject); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if _, err := c.Decide(ctx, "sideways"); err == nil {
		t.Error("Decide() with unknown direction should fail")
	}

	if diff := cmp.Diff([]int{3}, accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, rejected); diff != "" {
		t.Errorf("rejected mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]haptics.Kind{haptics.ImpactMedium, haptics.ImpactMedium}, pulses); diff != "" {
		t.Errorf("pulses mismatch (-want +got):\n%s", diff)
	}
}

func TestController_ResetClampsStart(t *testing.T) {
	c := New(DefaultConfig(), &fakeSource{}, nil)

	tests := []struct {
		name  string
		items []model.Item
		start int
		want  int
	}{
		{"top", items(1, 3), 2, 2},
		{"past end", items(1, 3), 10, 2},
		{"middle", items(1, 3), 1, 1},
		{"below floor", items(1, 3), -5, -1},
		{"empty", nil, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Reset(tt.items, tt.start)
			if got := c.Cursor(); got != tt.want {
				t.Errorf("Cursor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
	if err := (Config{RefillThreshold: 0}).Validate(); err == nil {
		t.Error("zero refill threshold should fail")
	}
	if err := (Config{RefillThreshold: 5, CaughtUpMinItems: -1}).Validate(); err == nil {
		t.Error("negative caught-up minimum should fail")
	}
}
