package inflation

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Ledger is the cross-month inflation record: one realized monthly
// percentage per YYYY-MM key, persisted as a single JSON mapping. Each
// month is written once when it closes; recomputation overwrites the same
// value idempotently.
type Ledger struct {
	path    string
	entries map[string]float64
}

// LoadLedger reads the ledger from path. A missing file yields an empty
// ledger.
func LoadLedger(path string) (*Ledger, error) {
	l := &Ledger{
		path:    path,
		entries: make(map[string]float64),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}

	return l, nil
}

// Get returns a month's realized inflation.
func (l *Ledger) Get(month string) (float64, bool) {
	v, ok := l.entries[month]
	return v, ok
}

// Entries returns a copy of the full mapping.
func (l *Ledger) Entries() map[string]float64 {
	out := make(map[string]float64, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}

// Put records a month's realized inflation and rewrites the ledger file
// wholesale, atomically.
func (l *Ledger) Put(month string, pct float64) error {
	l.entries[month] = pct

	data, err := json.Marshal(l.entries)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}

	return nil
}

// YearToDate compounds the realized monthly percentages from January
// through throughMonth (inclusive), in calendar order:
// ((1+jan/100)*(1+feb/100)*...*(1+m/100) - 1) * 100, rounded to 2.
// Every month in the range must be present.
func (l *Ledger) YearToDate(year, throughMonth int) (float64, error) {
	compounded := 1.0
	for m := 1; m <= throughMonth; m++ {
		key := fmt.Sprintf("%04d-%02d", year, m)
		pct, ok := l.entries[key]
		if !ok {
			return 0, fmt.Errorf("ledger has no entry for %s", key)
		}
		compounded *= 1 + pct/100
	}

	return round2((compounded - 1) * 100), nil
}

// round2 rounds to 2 decimal places, the precision of every published
// percentage.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
