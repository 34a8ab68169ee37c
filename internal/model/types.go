package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category tags the fetch batch an item came from.
type Category string

const (
	CategoryFeatured     Category = "FEATURED"
	CategoryTopGainers   Category = "TOP_GAINERS"
	CategoryMostValuable Category = "MOST_VALUABLE"
	CategoryTopVolume    Category = "TOP_VOLUME"
	CategoryNew          Category = "NEW"
)

// Categories lists every known category in their default sequence order.
var Categories = []Category{
	CategoryFeatured,
	CategoryTopGainers,
	CategoryMostValuable,
	CategoryTopVolume,
	CategoryNew,
}

// ListType returns the explore API list type for the category.
func (c Category) ListType() string {
	if c == CategoryTopVolume {
		return "TOP_VOLUME_24H"
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory parses a category name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c == "TOP_VOLUME_24H" {
		return CategoryTopVolume, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// ParseCategories parses a list of category names.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MarketAttributes is pass-through coin data shown in the detail view.
// The deck never interprets these values.
type MarketAttributes struct {
	Address        string `json:"address"`
	Symbol         string `json:"symbol,omitempty"`
	TotalSupply    string `json:"totalSupply,omitempty"`
	MarketCap      string `json:"marketCap,omitempty"`
	Volume24h      string `json:"volume24h,omitempty"`
	UniqueHolders  int    `json:"uniqueHolders,omitempty"`
	CreatorAddress string `json:"creatorAddress,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	ChainID        int    `json:"chainId,omitempty"`
}

// Item is a single swipeable card.
type Item struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl"`
	Price       string            `json:"price"`
	Category    Category          `json:"category"`
	Creator     string            `json:"creator,omitempty"`
	Coin        *MarketAttributes `json:"coinData,omitempty"`
}

// Address returns the coin contract address, or "" if unknown.
func (i Item) Address() string {
	if i.Coin == nil {
		return ""
	}
	return i.Coin.Address
}

// Direction is a swipe decision.
type Direction string

const (
	Accept Direction = "accept" // swipe right: buy
	Reject Direction = "reject" // swipe left: pass
)

// ParseDirection accepts accept/reject as well as right/left.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept", "right", "buy":
		return Accept, nil
	case "reject", "left", "pass":
		return Reject, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Decision records one swipe against one item.
type Decision struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Item       Item
	Direction  Direction
	Position   int    // Cursor at the time of the decision
	Generation uint64 // Deck generation the item belonged to
	DecidedAt  time.Time
}
