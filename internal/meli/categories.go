package meli

import (
	"context"
	"fmt"
	"net/url"
)

type categoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type categoryDetail struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	ChildrenCategories []categoryRef `json:"children_categories"`
	PathFromRoot       []categoryRef `json:"path_from_root"`
}

// Category is the reference-table view of one category.
type Category struct {
	ID         string
	Name       string
	ParentID   string
	ParentName string
}

// ListCategories returns the ids of the site's top-level categories.
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var cats []categoryRef
	path := fmt.Sprintf("/sites/%s/categories", c.cfg.Site)
	if err := c.getJSON(ctx, path, nil, &cats); err != nil {
		return nil, &SourceError{Scope: "site categories", Err: err}
	}

	ids := make([]string, 0, len(cats))
	for _, cat := range cats {
		ids = append(ids, cat.ID)
	}
	return ids, nil
}

// ChildCategories returns the ids of a category's second-level children.
// The basket universe is built from these.
func (c *Client) ChildCategories(ctx context.Context, categoryID string) ([]string, error) {
	var detail categoryDetail
	if err := c.getJSON(ctx, "/categories/"+url.PathEscape(categoryID), nil, &detail); err != nil {
		return nil, &SourceError{Scope: "category " + categoryID, Err: err}
	}

	ids := make([]string, 0, len(detail.ChildrenCategories))
	for _, child := range detail.ChildrenCategories {
		ids = append(ids, child.ID)
	}
	return ids, nil
}

// GetCategory returns a category's name and root parent, the fields the
// reference table heals lazily.
func (c *Client) GetCategory(ctx context.Context, categoryID string) (*Category, error) {
	var detail categoryDetail
	if err := c.getJSON(ctx, "/categories/"+url.PathEscape(categoryID), nil, &detail); err != nil {
		return nil, &SourceError{Scope: "category " + categoryID, Err: err}
	}

	cat := &Category{
		ID:   detail.ID,
		Name: detail.Name,
	}
	if len(detail.PathFromRoot) > 0 {
		cat.ParentID = detail.PathFromRoot[0].ID
		cat.ParentName = detail.PathFromRoot[0].Name
	}
	return cat, nil
}
