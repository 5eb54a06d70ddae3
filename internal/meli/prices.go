package meli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nachov/ipcmeli/internal/series"
)

// MaxPriceBatch is the hard limit of the upstream bulk items endpoint.
const MaxPriceBatch = 20

type bulkItem struct {
	Code int `json:"code"`
	Body struct {
		ID    string   `json:"id"`
		Price *float64 `json:"price"`
	} `json:"body"`
}

// GetPrices prices one batch of up to MaxPriceBatch items in a single bulk
// call. Per item: a 200 code with a price present yields a known price,
// anything else (delisted, non-200, missing price) yields unavailable. An
// entry whose body carries no id at all cannot be attributed and is omitted.
func (c *Client) GetPrices(ctx context.Context, ids []string) (map[string]series.Price, error) {
	if len(ids) == 0 {
		return map[string]series.Price{}, nil
	}
	if len(ids) > MaxPriceBatch {
		return nil, fmt.Errorf("price batch of %d exceeds upstream limit %d", len(ids), MaxPriceBatch)
	}

	params := url.Values{
		"ids":        {strings.Join(ids, ",")},
		"attributes": {"id,price,shipping.logistic_type"},
	}

	var items []bulkItem
	if err := c.getJSON(ctx, "/items", params, &items); err != nil {
		return nil, &SourceError{Scope: "price batch", Err: err}
	}

	prices := make(map[string]series.Price, len(items))
	for _, item := range items {
		if item.Body.ID == "" {
			c.logger.Warn("Bulk price entry without item id, skipping")
			continue
		}
		if item.Code == http.StatusOK && item.Body.Price != nil {
			prices[item.Body.ID] = series.Known(*item.Body.Price)
		} else {
			prices[item.Body.ID] = series.Unavailable()
		}
	}

	return prices, nil
}
