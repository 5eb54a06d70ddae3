// Package catalog maintains the category reference table: the basket's
// category universe and each category's display names.
package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nachov/ipcmeli/internal/meli"
	"github.com/nachov/ipcmeli/pkg/logger"
)

var header = []string{"category_id", "category_name", "parent_id", "parent_name"}

// CategoryGetter resolves one category's metadata.
type CategoryGetter interface {
	GetCategory(ctx context.Context, categoryID string) (*meli.Category, error)
}

// Table is the append-only category reference table, persisted as a CSV.
// Entries are never invalidated; missing fields are healed lazily from the
// upstream source.
type Table struct {
	path    string
	order   []string
	entries map[string]meli.Category
	logger  *logger.Logger
}

// Load reads the table from path. A missing file yields an empty table,
// the first-run state before seeding.
func Load(path string, log *logger.Logger) (*Table, error) {
	t := &Table{
		path:    path,
		entries: make(map[string]meli.Category),
		logger:  log.WithField("module", "catalog"),
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open category table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}
	if len(rows) == 0 {
		return t, nil
	}
	if len(rows[0]) != len(header) || rows[0][0] != header[0] {
		return nil, fmt.Errorf("category table %s has unexpected header %v", path, rows[0])
	}

	for _, row := range rows[1:] {
		id := row[0]
		if _, dup := t.entries[id]; dup {
			continue
		}
		t.order = append(t.order, id)
		t.entries[id] = meli.Category{
			ID:         id,
			Name:       row[1],
			ParentID:   row[2],
			ParentName: row[3],
		}
	}

	return t, nil
}

// CategoryIDs returns the category universe in table order.
func (t *Table) CategoryIDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.order)
}

// Get returns one category's metadata.
func (t *Table) Get(categoryID string) (meli.Category, bool) {
	cat, ok := t.entries[categoryID]
	return cat, ok
}

// Seed registers category ids without metadata. Existing entries are kept.
func (t *Table) Seed(ids []string) {
	for _, id := range ids {
		if _, ok := t.entries[id]; ok {
			continue
		}
		t.order = append(t.order, id)
		t.entries[id] = meli.Category{ID: id}
	}
}

// Heal fills missing names and parents for the given ids from source and
// persists the table when anything changed. Lookup failures leave the entry
// incomplete for a later run; they never abort healing.
func (t *Table) Heal(ctx context.Context, source CategoryGetter, ids []string) error {
	t.Seed(ids)

	changed := false
	for _, id := range ids {
		cat := t.entries[id]
		if cat.Name != "" && cat.ParentID != "" && cat.ParentName != "" {
			continue
		}

		fresh, err := source.GetCategory(ctx, id)
		if err != nil {
			t.logger.WithError(err).WithField("category", id).Warn("Category heal lookup failed")
			continue
		}

		t.entries[id] = *fresh
		changed = true
	}

	if !changed {
		return nil
	}
	return t.save()
}

// save rewrites the table atomically.
func (t *Table) save() error {
	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save category table: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save category table: %w", err)
	}
	for _, id := range t.order {
		cat := t.entries[id]
		if err := w.Write([]string{cat.ID, cat.Name, cat.ParentID, cat.ParentName}); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return fmt.Errorf("save category table: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save category table: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save category table: %w", err)
	}
	if err := os.Rename(tmp.Name(), t.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save category table: %w", err)
	}

	return nil
}
