package series

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// metaColumns precede the date columns in the persisted file.
var metaColumns = []string{"item_id", "category_id", "title"}

// PersistenceError signals that a monthly series file could not be created,
// read or replaced. It is fatal to the current run: the series cannot be
// updated blind.
type PersistenceError struct {
	Month string
	Op    string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("series %s: %s: %v", e.Month, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store owns the on-disk monthly series files exclusively: one CSV per
// month under dir, columns [item_id, category_id, title, YYYY-MM-DD...].
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create series dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (st *Store) path(month string) string {
	return filepath.Join(st.dir, month+".csv")
}

// Exists reports whether a series file for month is present.
func (st *Store) Exists(month string) bool {
	_, err := os.Stat(st.path(month))
	return err == nil
}

// Create persists a freshly built series. It refuses to overwrite an
// existing file: an in-progress month must never be silently reset.
func (st *Store) Create(s *Series) error {
	f, err := os.OpenFile(st.path(s.month), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return &PersistenceError{Month: s.month, Op: "create", Err: fmt.Errorf("series already exists")}
		}
		return &PersistenceError{Month: s.month, Op: "create", Err: err}
	}

	if err := encode(f, s); err != nil {
		f.Close()
		os.Remove(st.path(s.month))
		return &PersistenceError{Month: s.month, Op: "create", Err: err}
	}

	if err := f.Close(); err != nil {
		return &PersistenceError{Month: s.month, Op: "create", Err: err}
	}

	return nil
}

// Save replaces the series file atomically: the full frame is written to a
// temp file and renamed over the old one, so a run that dies mid-write
// leaves the previous day's file untouched.
func (st *Store) Save(s *Series) error {
	tmp, err := os.CreateTemp(st.dir, s.month+".*.tmp")
	if err != nil {
		return &PersistenceError{Month: s.month, Op: "save", Err: err}
	}

	if err := encode(tmp, s); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &PersistenceError{Month: s.month, Op: "save", Err: err}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Month: s.month, Op: "save", Err: err}
	}

	if err := os.Rename(tmp.Name(), st.path(s.month)); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Month: s.month, Op: "save", Err: err}
	}

	return nil
}

// Load reads and parses the series file for month.
func (st *Store) Load(month string) (*Series, error) {
	f, err := os.Open(st.path(month))
	if err != nil {
		return nil, &PersistenceError{Month: month, Op: "load", Err: err}
	}
	defer f.Close()

	s, err := decode(f, month)
	if err != nil {
		return nil, &PersistenceError{Month: month, Op: "load", Err: err}
	}

	return s, nil
}

// Months lists the month keys with a persisted series in ascending
// order, so the last entry is the most recent month.
func (st *Store) Months() ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(st.dir, "????-??.csv"))
	if err != nil {
		return nil, fmt.Errorf("list series dir: %w", err)
	}

	months := make([]string, 0, len(entries))
	for _, e := range entries {
		base := filepath.Base(e)
		months = append(months, base[:len(base)-len(".csv")])
	}
	sort.Strings(months)
	return months, nil
}

func encode(f *os.File, s *Series) error {
	w := csv.NewWriter(f)

	header := append(append([]string{}, metaColumns...), s.dates...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, rec := range s.records {
		row[0] = rec.ItemID
		row[1] = rec.CategoryID
		row[2] = rec.Title
		for i, date := range s.dates {
			p, ok := rec.prices[date]
			if !ok {
				return fmt.Errorf("record %s has no observation for column %s", rec.ItemID, date)
			}
			row[len(metaColumns)+i] = p.String()
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func decode(f *os.File, month string) (*Series, error) {
	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(metaColumns)+1 {
		return nil, fmt.Errorf("header has no price columns")
	}
	for i, name := range metaColumns {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %d: %q", i, header[i])
		}
	}
	dates := header[len(metaColumns):]

	s := &Series{
		month: month,
		dates: append([]string{}, dates...),
		index: make(map[string]int),
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	for n, row := range rows {
		itemID := row[0]
		if _, dup := s.index[itemID]; dup {
			return nil, fmt.Errorf("duplicate item id %s at row %d", itemID, n+2)
		}

		rec := &Record{
			ItemID:     itemID,
			CategoryID: row[1],
			Title:      row[2],
			prices:     make(map[string]Price, len(dates)),
		}
		for i, date := range dates {
			v, err := strconv.ParseFloat(row[len(metaColumns)+i], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", n+2, date, err)
			}
			rec.prices[date] = FromSentinel(v)
		}

		s.index[itemID] = len(s.records)
		s.records = append(s.records, rec)
	}

	return s, nil
}
