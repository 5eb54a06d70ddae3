// Package basket resolves the category universe into the list of items
// tracked for a month.
package basket

import (
	"context"
	"fmt"

	"github.com/nachov/ipcmeli/internal/meli"
	"github.com/nachov/ipcmeli/pkg/logger"
)

// Item is one basket member with its discovery metadata.
type Item struct {
	ID         string
	CategoryID string
	Title      string
}

// Searcher lists a category's current listings.
type Searcher interface {
	SearchItems(ctx context.Context, categoryID string) ([]meli.SearchItem, error)
}

// CategoryLister resolves the site's second-level category universe.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]string, error)
	ChildCategories(ctx context.Context, categoryID string) ([]string, error)
}

// Resolver builds the monthly basket.
type Resolver struct {
	source Searcher
	logger *logger.Logger
}

// NewResolver creates a basket resolver over the item source.
func NewResolver(source Searcher, log *logger.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: log.WithField("module", "basket"),
	}
}

// Resolve queries every category and keeps the eligible listings
// (warehouse-fulfilled, brand new), in category order. A category that
// fails to query is logged and skipped; one broken category must not cost
// the whole basket. Duplicate item ids across categories are preserved
// here; the series store dedups on creation.
func (r *Resolver) Resolve(ctx context.Context, categories []string) ([]Item, error) {
	var items []Item
	failed := 0

	for _, categoryID := range categories {
		listings, err := r.source.SearchItems(ctx, categoryID)
		if err != nil {
			failed++
			r.logger.WithError(err).WithField("category", categoryID).Warn("Category search failed, skipping")
			continue
		}

		for _, listing := range listings {
			if !listing.Eligible() {
				continue
			}
			items = append(items, Item{
				ID:         listing.ID,
				CategoryID: categoryID,
				Title:      listing.Title,
			})
		}
	}

	if failed == len(categories) && len(categories) > 0 {
		return nil, fmt.Errorf("all %d categories failed to resolve", failed)
	}

	r.logger.WithFields(map[string]interface{}{
		"categories":        len(categories),
		"failed_categories": failed,
		"items":             len(items),
	}).Info("Basket resolved")

	return items, nil
}

// Universe expands the site's top-level categories into the second-level
// ids used as the basket universe. Used once to seed the category table.
func Universe(ctx context.Context, source CategoryLister, log *logger.Logger) ([]string, error) {
	roots, err := source.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list root categories: %w", err)
	}

	var universe []string
	for _, root := range roots {
		children, err := source.ChildCategories(ctx, root)
		if err != nil {
			log.WithError(err).WithField("category", root).Warn("Child category lookup failed, skipping")
			continue
		}
		universe = append(universe, children...)
	}

	return universe, nil
}
