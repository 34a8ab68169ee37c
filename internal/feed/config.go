package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/base-swiper/internal/model"
)

// Mode selects how the initial deck is assembled.
type Mode string

const (
	// ModeScrambled loads every category in parallel and shuffles once.
	ModeScrambled Mode = "scrambled"
	// ModeProgressive loads the first steps in order and extends on demand.
	ModeProgressive Mode = "progressive"
)

// Config holds Feed Loader configuration.
type Config struct {
	Sequence     []model.Category // Fixed category order; the last one is repeatable
	PageSize     int              // Items requested per fetch (default: 20)
	Mode         Mode             // scrambled or progressive (default: progressive)
	InitialSteps int              // Progressive mode: sequence steps loaded up front (default: 1)
	Parallelism  int              // Scrambled mode: concurrent fetches (default: 4)
	FetchTimeout time.Duration    // Per-category fetch timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Sequence: []model.Category{
			model.CategoryFeatured,
			model.CategoryTopGainers,
			model.CategoryMostValuable,
			model.CategoryTopVolume,
			model.CategoryNew,
		},
		PageSize:     20,
		Mode:         ModeProgressive,
		InitialSteps: 1,
		Parallelism:  4,
		FetchTimeout: 10 * time.Second,
	}
}

// Repeatable returns the terminal category of the sequence.
func (c Config) Repeatable() model.Category {
	if len(c.Sequence) == 0 {
		return ""
	}
	return c.Sequence[len(c.Sequence)-1]
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Sequence) == 0 {
		return errors.New("feed.sequence must not be empty")
	}
	seen := make(map[model.Category]bool, len(c.Sequence))
	for _, cat := range c.Sequence {
		if !cat.Valid() {
			return fmt.Errorf("feed.sequence: unknown category %q", cat)
		}
		if seen[cat] {
			return fmt.Errorf("feed.sequence: duplicate category %q", cat)
		}
		seen[cat] = true
	}
	if c.PageSize < 1 {
		return errors.New("feed.page_size must be >= 1")
	}
	if c.Mode != ModeScrambled && c.Mode != ModeProgressive {
		return fmt.Errorf("feed.mode must be %q or %q, got %q", ModeScrambled, ModeProgressive, c.Mode)
	}
	if c.InitialSteps < 1 || c.InitialSteps > len(c.Sequence) {
		return fmt.Errorf("feed.initial_steps must be between 1 and %d, got %d", len(c.Sequence), c.InitialSteps)
	}
	if c.Parallelism < 1 {
		return errors.New("feed.parallelism must be >= 1")
	}
	return nil
}
