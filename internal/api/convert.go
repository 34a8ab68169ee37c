package api

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/base-swiper/internal/model"
)

// Fallback display values for records missing required fields.
const (
	PlaceholderImageURL = "https://via.placeholder.com/800x1000?text=No+Image"
	UnnamedToken        = "Unnamed Token"
	UnknownCreator      = "Unknown Creator"
	FreePrice           = "Free"
)

// ToItem converts an explore node to a card tagged with its source category.
// The ID is left zero; the feed loader assigns it.
func (n *ExploreNode) ToItem(category model.Category) model.Item {
	creator := UnknownCreator
	if n.CreatorProfile != nil && n.CreatorProfile.Handle != "" {
		creator = n.CreatorProfile.Handle
	}

	return model.Item{
		Name:        firstNonEmpty(strings.TrimSpace(n.Name), UnnamedToken),
		Description: n.description(creator),
		ImageURL:    n.imageURL(),
		Price:       n.price(),
		Category:    category,
		Creator:     creator,
		Coin:        n.attributes(),
	}
}

// ToItems converts a page of nodes.
func ToItems(nodes []ExploreNode, category model.Category) []model.Item {
	items := make([]model.Item, 0, len(nodes))
	for i := range nodes {
		items = append(items, nodes[i].ToItem(category))
	}
	return items
}

func (n *ExploreNode) imageURL() string {
	if m := n.MediaContent; m != nil {
		if p := m.PreviewImage; p != nil {
			if p.Medium != "" {
				return p.Medium
			}
			if p.Small != "" {
				return p.Small
			}
		}
		if m.OriginalURI != "" {
			return m.OriginalURI
		}
	}
	return PlaceholderImageURL
}

func (n *ExploreNode) description(creator string) string {
	if d := strings.TrimSpace(n.Description); d != "" {
		return d
	}
	return "Created by " + creator + " • Token: " + shortAddress(n.Address)
}

// price prefers the USDC quote, then market cap, then "Free".
func (n *ExploreNode) price() string {
	if n.TokenPrice != nil && n.TokenPrice.PriceInUSDC != "" {
		return "$" + n.TokenPrice.PriceInUSDC
	}
	if n.MarketCap != "" && n.MarketCap != "0" {
		mc, err := decimal.NewFromString(n.MarketCap)
		if err == nil {
			return "Market Cap: $" + mc.StringFixed(2)
		}
	}
	return FreePrice
}

func (n *ExploreNode) attributes() *model.MarketAttributes {
	if n.Address == "" {
		return nil
	}
	return &model.MarketAttributes{
		Address:        n.Address,
		Symbol:         n.Symbol,
		TotalSupply:    n.TotalSupply,
		MarketCap:      n.MarketCap,
		Volume24h:      n.Volume24h,
		UniqueHolders:  n.UniqueHolders,
		CreatorAddress: n.CreatorAddress,
		CreatedAt:      n.CreatedAt,
		ChainID:        n.ChainID,
	}
}

func shortAddress(addr string) string {
	if len(addr) < 10 {
		return "unknown"
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
