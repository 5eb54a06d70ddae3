package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nachov/ipcmeli/internal/meli"
	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

// fakeGetter serves category metadata, counting lookups.
type fakeGetter struct {
	categories map[string]meli.Category
	fail       map[string]bool
	lookups    int
}

func (f *fakeGetter) GetCategory(_ context.Context, id string) (*meli.Category, error) {
	f.lookups++
	if f.fail[id] {
		return nil, errors.New("lookup failed")
	}
	cat, ok := f.categories[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &cat, nil
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "categories.csv"), testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestHealAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	log := testLogger()

	table, err := Load(path, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	getter := &fakeGetter{
		categories: map[string]meli.Category{
			"MLA401": {ID: "MLA401", Name: "Heladeras", ParentID: "MLA5725", ParentName: "Hogar"},
			"MLA402": {ID: "MLA402", Name: "Lavarropas", ParentID: "MLA5725", ParentName: "Hogar"},
		},
	}

	if err := table.Heal(context.Background(), getter, []string{"MLA401", "MLA402"}); err != nil {
		t.Fatalf("Heal failed: %v", err)
	}

	if getter.lookups != 2 {
		t.Errorf("lookups = %d, want 2", getter.lookups)
	}

	// Healed entries persist across a reload.
	reloaded, err := Load(path, log)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded Len() = %d, want 2", reloaded.Len())
	}
	cat, ok := reloaded.Get("MLA401")
	if !ok || cat.Name != "Heladeras" || cat.ParentName != "Hogar" {
		t.Errorf("Get(MLA401) = %+v ok=%v", cat, ok)
	}

	// A second heal over complete entries does not hit the source again.
	getter.lookups = 0
	if err := reloaded.Heal(context.Background(), getter, []string{"MLA401", "MLA402"}); err != nil {
		t.Fatalf("second Heal failed: %v", err)
	}
	if getter.lookups != 0 {
		t.Errorf("lookups = %d on complete table, want 0", getter.lookups)
	}
}

func TestHealToleratesLookupFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")

	table, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	getter := &fakeGetter{
		categories: map[string]meli.Category{
			"MLA401": {ID: "MLA401", Name: "Heladeras", ParentID: "MLA5725", ParentName: "Hogar"},
		},
		fail: map[string]bool{"MLA402": true},
	}

	if err := table.Heal(context.Background(), getter, []string{"MLA401", "MLA402"}); err != nil {
		t.Fatalf("Heal failed: %v", err)
	}

	// The failed entry stays seeded but incomplete.
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
	cat, _ := table.Get("MLA402")
	if cat.Name != "" {
		t.Errorf("failed lookup should leave entry incomplete, got %+v", cat)
	}
}

func TestSeedPreservesOrderAndEntries(t *testing.T) {
	table, err := Load(filepath.Join(t.TempDir(), "categories.csv"), testLogger())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	table.Seed([]string{"MLA401", "MLA402"})
	table.Seed([]string{"MLA402", "MLA403"})

	ids := table.CategoryIDs()
	if len(ids) != 3 || ids[0] != "MLA401" || ids[2] != "MLA403" {
		t.Errorf("CategoryIDs() = %v", ids)
	}
}

func TestLoadRejectsForeignCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	if err := os.WriteFile(path, []byte("item_id,price\nMLA1,10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, testLogger()); err == nil {
		t.Error("expected error for a non-category CSV")
	}
}
