package series

import (
	"fmt"
)

// Row is one item with its first price observation, the unit of series
// creation.
type Row struct {
	ItemID     string
	CategoryID string
	Title      string
	Price      Price
}

// Record is one item's price history within a month.
type Record struct {
	ItemID     string
	CategoryID string
	Title      string
	prices     map[string]Price
}

// Price returns the observation for a date column.
func (r *Record) Price(date string) (Price, bool) {
	p, ok := r.prices[date]
	return p, ok
}

// Series is one month's basket: ordered date columns, ordered item records,
// unique item ids. Date columns are appended, never removed.
type Series struct {
	month   string
	dates   []string
	records []*Record
	index   map[string]int
}

// New builds a series for month (YYYY-MM) with one price column named date.
// Duplicate item ids keep the first-seen row; an item legitimately listed in
// several categories must not join twice later.
func New(month, date string, rows []Row) *Series {
	s := &Series{
		month: month,
		dates: []string{date},
		index: make(map[string]int),
	}

	for _, row := range rows {
		if _, seen := s.index[row.ItemID]; seen {
			continue
		}
		rec := &Record{
			ItemID:     row.ItemID,
			CategoryID: row.CategoryID,
			Title:      row.Title,
			prices:     map[string]Price{date: row.Price},
		}
		s.index[row.ItemID] = len(s.records)
		s.records = append(s.records, rec)
	}

	return s
}

// Month returns the series key (YYYY-MM).
func (s *Series) Month() string {
	return s.month
}

// Dates returns the date columns in calendar order.
func (s *Series) Dates() []string {
	out := make([]string, len(s.dates))
	copy(out, s.dates)
	return out
}

// FirstDate returns the positionally first price column. When the series was
// created late this is not calendar day 1; month-to-date is measured from
// here regardless.
func (s *Series) FirstDate() string {
	return s.dates[0]
}

// LastDate returns the most recent price column.
func (s *Series) LastDate() string {
	return s.dates[len(s.dates)-1]
}

// HasDate reports whether date is already a column.
func (s *Series) HasDate(date string) bool {
	for _, d := range s.dates {
		if d == date {
			return true
		}
	}
	return false
}

// Len returns the number of item records.
func (s *Series) Len() int {
	return len(s.records)
}

// Records returns the item records in basket order.
func (s *Series) Records() []*Record {
	return s.records
}

// Get returns the record for an item id.
func (s *Series) Get(itemID string) (*Record, bool) {
	i, ok := s.index[itemID]
	if !ok {
		return nil, false
	}
	return s.records[i], true
}

// AppendObservation inner-joins today's price mapping onto the series under
// a new column named date, and returns how many items were dropped.
//
// Items present in the series but absent from prices are removed for the
// rest of the month: an item that can no longer be queried is excluded from
// every future comparison, so the comparable basket only ever shrinks. An
// unavailable price is NOT absence; it keeps the item with a sentinel
// observation.
//
// Re-running with the date of the newest existing column replaces that
// column, which makes a same-day re-run idempotent. Any older column is
// final and cannot be rewritten.
func (s *Series) AppendObservation(date string, prices map[string]Price) (int, error) {
	if date < s.LastDate() {
		return 0, fmt.Errorf("observation for %s is older than last column %s", date, s.LastDate())
	}
	if s.HasDate(date) && date != s.LastDate() {
		return 0, fmt.Errorf("date column %s is already finalized", date)
	}

	kept := make([]*Record, 0, len(s.records))
	index := make(map[string]int, len(s.records))
	dropped := 0

	for _, rec := range s.records {
		price, present := prices[rec.ItemID]
		if !present {
			dropped++
			continue
		}
		rec.prices[date] = price
		index[rec.ItemID] = len(kept)
		kept = append(kept, rec)
	}

	s.records = kept
	s.index = index
	if !s.HasDate(date) {
		s.dates = append(s.dates, date)
	}

	return dropped, nil
}

// ComparableOn returns the records whose price on date is known and
// strictly positive. This subset is the population for all inflation
// metrics on that date.
func (s *Series) ComparableOn(date string) []*Record {
	var out []*Record
	for _, rec := range s.records {
		if p, ok := rec.prices[date]; ok && p.Comparable() {
			out = append(out, rec)
		}
	}
	return out
}
