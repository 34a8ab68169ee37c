package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// DefaultPageSize matches the mini-app's explore request count.
const DefaultPageSize = 20

// GetExplore fetches one page of an explore list.
func (c *Client) GetExplore(ctx context.Context, opts ExploreOptions) (*Page, error) {
	query := url.Values{}

	if opts.ListType != "" {
		query.Set("listType", opts.ListType)
	}
	count := opts.Count
	if count <= 0 {
		count = DefaultPageSize
	}
	query.Set("count", strconv.Itoa(count))
	if opts.After != "" {
		query.Set("after", opts.After)
	}

	var resp ExploreResponse
	if err := c.get(ctx, "/explore", query, &resp); err != nil {
		return nil, fmt.Errorf("get explore %s: %w", opts.ListType, err)
	}

	return c.decodePage(opts.ListType, resp.ExploreList), nil
}

// decodePage decodes each edge independently. A node that fails to decode is
// kept as a zero node so it still yields a placeholder card.
func (c *Client) decodePage(listType string, list ExploreList) *Page {
	page := &Page{
		Nodes:       make([]ExploreNode, 0, len(list.Edges)),
		EndCursor:   list.PageInfo.EndCursor,
		HasNextPage: list.PageInfo.HasNextPage,
	}

	for i, edge := range list.Edges {
		var node ExploreNode
		if len(edge.Node) > 0 {
			if err := json.Unmarshal(edge.Node, &node); err != nil {
				c.logger.Warn("malformed explore node",
					"list_type", listType,
					"index", i,
					"error", err,
				)
				node = ExploreNode{}
				page.Malformed++
			}
		}
		page.Nodes = append(page.Nodes, node)
	}

	return page
}
