package deck

import (
	"context"
	"fmt"
	"sync"

	"github.com/rickgao/base-swiper/internal/feed"
	"github.com/rickgao/base-swiper/internal/model"
)

// fakeSource hands out prepared batches and then reports exhaustion.
// When gate is set every LoadNext blocks on it first.
type fakeSource struct {
	mu        sync.Mutex
	batches   [][]model.Item
	exhausted bool
	calls     int
	gate      chan struct{}
}

func (f *fakeSource) LoadNext(ctx context.Context, step int) (feed.Batch, int, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.batches) == 0 {
		f.exhausted = true
		return feed.Batch{Exhausted: true}, step, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return feed.Batch{Items: b}, step + 1, nil
}

func (f *fakeSource) Step() int { return 0 }

func (f *fakeSource) InFlight() bool { return false }

func (f *fakeSource) Exhausted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exhausted
}

// items builds cards with ids from..to inclusive.
func items(from, to int) []model.Item {
	var out []model.Item
	for id := from; id <= to; id++ {
		out = append(out, model.Item{
			ID:       id,
			Name:     fmt.Sprintf("Coin %d", id),
			Category: model.CategoryNew,
			Coin:     &model.MarketAttributes{Address: fmt.Sprintf("0x%040d", id)},
		})
	}
	return out
}
