package feed

import "github.com/rickgao/base-swiper/internal/model"

// loadState is the Feed Loader's per-generation state. It is created fresh on
// every reset and only touched with Loader.mu held.
type loadState struct {
	generation uint64
	step       int                       // Next sequence step LoadNext will fetch
	requested  map[model.Category]bool   // Categories fetched at least once
	cursors    map[model.Category]string // Pagination cursor per category
	seen       map[string]struct{}       // Coin addresses already in the deck
	nextID     int                       // Next item id; ids restart at 1 per generation
	inFlight   bool
	exhausted  bool
}

func newLoadState(generation uint64) loadState {
	return loadState{
		generation: generation,
		requested:  make(map[model.Category]bool),
		cursors:    make(map[model.Category]string),
		seen:       make(map[string]struct{}),
		nextID:     1,
	}
}

// admit filters out coins already seen this generation and assigns ids to the
// rest. Items without an address cannot be deduplicated and are always kept.
func (s *loadState) admit(items []model.Item) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if addr := it.Address(); addr != "" {
			if _, dup := s.seen[addr]; dup {
				continue
			}
			s.seen[addr] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}

// assignIDs numbers items in deck order.
func (s *loadState) assignIDs(items []model.Item) {
	for i := range items {
		items[i].ID = s.nextID
		s.nextID++
	}
}
