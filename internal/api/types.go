package api

import "encoding/json"

// ExploreResponse from GET /explore
type ExploreResponse struct {
	ExploreList ExploreList `json:"exploreList"`
}

// ExploreList is a page of explore results.
type ExploreList struct {
	Edges    []ExploreEdge `json:"edges"`
	PageInfo PageInfo      `json:"pageInfo"`
}

// ExploreEdge wraps a raw coin node. Nodes are decoded one at a time so a
// malformed record cannot fail the whole page.
type ExploreEdge struct {
	Node   json.RawMessage `json:"node"`
	Cursor string          `json:"cursor,omitempty"`
}

// PageInfo carries the pagination cursor for the next page.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// ExploreNode represents a coin from the explore API.
type ExploreNode struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Address        string          `json:"address"`
	Symbol         string          `json:"symbol"`
	TotalSupply    string          `json:"totalSupply"`
	MarketCap      string          `json:"marketCap"`
	Volume24h      string          `json:"volume24h"`
	UniqueHolders  int             `json:"uniqueHolders"`
	CreatorAddress string          `json:"creatorAddress"`
	CreatedAt      string          `json:"createdAt"`
	ChainID        int             `json:"chainId"`
	MediaContent   *MediaContent   `json:"mediaContent"`
	CreatorProfile *CreatorProfile `json:"creatorProfile"`
	TokenPrice     *TokenPrice     `json:"tokenPrice"`
}

// MediaContent holds the coin's artwork.
type MediaContent struct {
	MimeType     string        `json:"mimetype"`
	OriginalURI  string        `json:"originalUri"`
	PreviewImage *PreviewImage `json:"previewImage"`
}

// PreviewImage holds resized artwork URLs.
type PreviewImage struct {
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Blurhash string `json:"blurhash"`
}

// CreatorProfile identifies the coin's creator.
type CreatorProfile struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

// TokenPrice is the coin's quoted price.
type TokenPrice struct {
	PriceInUSDC      string `json:"priceInUsdc"`
	CurrencyAddress  string `json:"currencyAddress"`
	PriceInPoolToken string `json:"priceInPoolToken"`
}

// ExploreOptions configures a GetExplore request.
type ExploreOptions struct {
	ListType string
	Count    int
	After    string
}

// Page is a decoded explore page: one node per edge, in order.
type Page struct {
	Nodes       []ExploreNode
	Malformed   int // Edges whose node failed to decode
	EndCursor   string
	HasNextPage bool
}
