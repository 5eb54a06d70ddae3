package meli

import (
	"context"
	"fmt"
	"net/url"
)

// SearchItem is one listing from the category search endpoint.
type SearchItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Condition string  `json:"condition"`
	Shipping  struct {
		LogisticType string `json:"logistic_type"`
	} `json:"shipping"`
}

type searchResponse struct {
	Results []SearchItem `json:"results"`
}

// Eligible reports whether the listing qualifies for the basket:
// warehouse-fulfilled and brand new. Anything else prices too erratically
// to track.
func (i SearchItem) Eligible() bool {
	return i.Shipping.LogisticType == "fulfillment" && i.Condition == "new"
}

// SearchItems returns the currently listed items of one category.
func (c *Client) SearchItems(ctx context.Context, categoryID string) ([]SearchItem, error) {
	params := url.Values{"category": {categoryID}}
	path := fmt.Sprintf("/sites/%s/search", c.cfg.Site)

	var resp searchResponse
	if err := c.getJSON(ctx, path, params, &resp); err != nil {
		return nil, &SourceError{Scope: "category " + categoryID, Err: err}
	}

	return resp.Results, nil
}
