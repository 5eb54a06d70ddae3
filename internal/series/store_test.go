package series

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return st
}

func TestCreateAndLoadRoundTrip(t *testing.T) {
	st := newTestStore(t)

	s := New("2024-05", "2024-05-01", []Row{
		{ItemID: "MLA1", CategoryID: "MLA401", Title: "Heladera", Price: Known(99999.99)},
		{ItemID: "MLA2", CategoryID: "MLA402", Title: "Notebook", Price: Unavailable()},
	})

	if err := st.Create(s); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	loaded, err := st.Load("2024-05")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Month() != "2024-05" {
		t.Errorf("Month() = %s", loaded.Month())
	}
	if loaded.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", loaded.Len())
	}
	if got := loaded.Dates(); len(got) != 1 || got[0] != "2024-05-01" {
		t.Errorf("Dates() = %v", got)
	}

	rec, ok := loaded.Get("MLA1")
	if !ok {
		t.Fatal("MLA1 missing after round trip")
	}
	if rec.Title != "Heladera" || rec.CategoryID != "MLA401" {
		t.Errorf("metadata lost: %+v", rec)
	}
	p, _ := rec.Price("2024-05-01")
	if v, known := p.Value(); !known || v != 99999.99 {
		t.Errorf("price = %v known=%v", v, known)
	}

	rec2, _ := loaded.Get("MLA2")
	p2, _ := rec2.Price("2024-05-01")
	if p2.Comparable() {
		t.Error("sentinel must load as unavailable")
	}
}

func TestCreateRefusesOverwrite(t *testing.T) {
	st := newTestStore(t)

	s := New("2024-05", "2024-05-01", []Row{{ItemID: "MLA1", Price: Known(1)}})
	if err := st.Create(s); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := st.Create(s)
	if err == nil {
		t.Fatal("expected error creating over an in-progress month")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	st := newTestStore(t)

	s := New("2024-05", "2024-05-01", []Row{
		{ItemID: "MLA1", Price: Known(100)},
		{ItemID: "MLA2", Price: Known(200)},
	})
	if err := st.Create(s); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := s.AppendObservation("2024-05-02", map[string]Price{
		"MLA1": Known(110),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := st.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := st.Load("2024-05")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after join drop", loaded.Len())
	}
	if got := loaded.Dates(); len(got) != 2 {
		t.Errorf("Dates() = %v", got)
	}
}

func TestLoadMissingMonth(t *testing.T) {
	st := newTestStore(t)

	_, err := st.Load("2024-01")
	if err == nil {
		t.Fatal("expected error for missing series")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
	if perr.Month != "2024-01" || perr.Op != "load" {
		t.Errorf("unexpected error detail: %+v", perr)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	st, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	tests := []struct {
		name string
		body string
	}{
		{"garbage header", "not,a,series\nfoo,bar,baz\n"},
		{"no price columns", "item_id,category_id,title\n"},
		{"bad float", "item_id,category_id,title,2024-05-01\nMLA1,c,t,abc\n"},
		{"duplicate id", "item_id,category_id,title,2024-05-01\nMLA1,c,t,1\nMLA1,c,t,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, "2024-05.csv"), []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := st.Load("2024-05"); err == nil {
				t.Error("expected error for corrupt series file")
			}
		})
	}
}

func TestMonths(t *testing.T) {
	st := newTestStore(t)

	// Created out of order; Months must come back ascending so callers
	// can take the last entry as the most recent month.
	for _, m := range []string{"2024-05", "2023-12", "2024-04"} {
		s := New(m, m+"-01", []Row{{ItemID: "MLA1", Price: Known(1)}})
		if err := st.Create(s); err != nil {
			t.Fatalf("Create %s failed: %v", m, err)
		}
	}

	months, err := st.Months()
	if err != nil {
		t.Fatalf("Months failed: %v", err)
	}
	want := []string{"2023-12", "2024-04", "2024-05"}
	if len(months) != len(want) {
		t.Fatalf("Months() = %v", months)
	}
	for i, m := range want {
		if months[i] != m {
			t.Errorf("Months()[%d] = %s, want %s", i, months[i], m)
		}
	}
}
