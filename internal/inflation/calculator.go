// Package inflation derives the daily proxy inflation index from a monthly
// price series.
package inflation

import (
	"fmt"

	"github.com/nachov/ipcmeli/internal/clock"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/logger"
)

// ComputationError signals that the inflation figures are undefined for
// this run (zero denominator, empty comparable basket, missing columns).
// Nothing may be published when it is returned.
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string {
	return "inflation computation: " + e.Reason
}

// Result holds one run's computed index figures.
type Result struct {
	Date        string   `json:"date"`
	Month       string   `json:"month"`
	DayOverDay  float64  `json:"day_over_day_pct"`
	MonthToDate float64  `json:"month_to_date_pct"`
	YearToDate  *float64 `json:"year_to_date_pct,omitempty"`
	BasketSize  int      `json:"basket_size"`
	MonthClosed bool     `json:"month_closed"`
}

// Calculator computes day-over-day, month-to-date and year-to-date
// percentage changes.
type Calculator struct {
	ledger       *Ledger
	ytdStartYear int
	logger       *logger.Logger
}

// NewCalculator creates a calculator over the cross-month ledger.
// Year-to-date is only computed for years at or after ytdStartYear.
func NewCalculator(ledger *Ledger, ytdStartYear int, log *logger.Logger) *Calculator {
	return &Calculator{
		ledger:       ledger,
		ytdStartYear: ytdStartYear,
		logger:       log.WithField("module", "inflation"),
	}
}

// Compute derives the index figures for the run date from the month's
// series. The comparable population is the set of rows priced strictly
// positive today; each pairwise change additionally requires the row to be
// comparable on the reference column, so a sentinel can never enter a sum.
//
// A same-day re-run is a plain recompute over the same columns and yields
// the same result.
//
// On the last calendar day of the month, the month-to-date figure is
// persisted into the ledger and the year-to-date compound is derived from
// it. A ledger missing earlier months degrades to "no year-to-date"
// rather than failing the run.
func (c *Calculator) Compute(s *series.Series, run clock.Run) (*Result, error) {
	today := run.DateKey()
	yesterday := run.YesterdayKey()

	if !s.HasDate(today) {
		return nil, &ComputationError{Reason: fmt.Sprintf("series %s has no column for %s", s.Month(), today)}
	}
	if !s.HasDate(yesterday) && yesterday != today {
		return nil, &ComputationError{Reason: fmt.Sprintf("series %s has no column for %s", s.Month(), yesterday)}
	}

	comparable := s.ComparableOn(today)
	if len(comparable) == 0 {
		return nil, &ComputationError{Reason: "comparable basket is empty"}
	}

	dayOverDay, err := pairwiseChange(comparable, today, yesterday)
	if err != nil {
		return nil, err
	}

	monthToDate, err := pairwiseChange(comparable, today, s.FirstDate())
	if err != nil {
		return nil, err
	}

	result := &Result{
		Date:        today,
		Month:       run.MonthKey(),
		DayOverDay:  dayOverDay,
		MonthToDate: monthToDate,
		BasketSize:  len(comparable),
		MonthClosed: run.IsLastDayOfMonth(),
	}

	if result.MonthClosed {
		if err := c.ledger.Put(run.MonthKey(), monthToDate); err != nil {
			return nil, fmt.Errorf("finalize month %s: %w", run.MonthKey(), err)
		}

		if run.Year() >= c.ytdStartYear {
			ytd, err := c.ledger.YearToDate(run.Year(), run.Month())
			if err != nil {
				c.logger.WithError(err).Warn("Year-to-date unavailable, publishing without it")
			} else {
				result.YearToDate = &ytd
			}
		}
	}

	return result, nil
}

// Snapshot computes the figures for the series' latest column without
// writing to the ledger. Used by the read-only status API.
func (c *Calculator) Snapshot(s *series.Series) (*Result, error) {
	dates := s.Dates()
	if len(dates) < 2 {
		return nil, &ComputationError{Reason: fmt.Sprintf("series %s has %d observation(s), need at least 2", s.Month(), len(dates))}
	}
	latest := dates[len(dates)-1]
	previous := dates[len(dates)-2]

	comparable := s.ComparableOn(latest)
	if len(comparable) == 0 {
		return nil, &ComputationError{Reason: "comparable basket is empty"}
	}

	dayOverDay, err := pairwiseChange(comparable, latest, previous)
	if err != nil {
		return nil, err
	}
	monthToDate, err := pairwiseChange(comparable, latest, s.FirstDate())
	if err != nil {
		return nil, err
	}

	return &Result{
		Date:        latest,
		Month:       s.Month(),
		DayOverDay:  dayOverDay,
		MonthToDate: monthToDate,
		BasketSize:  len(comparable),
	}, nil
}

// DailyFigure is one date's change within a month, used for exports.
type DailyFigure struct {
	Date        string
	DayOverDay  float64
	MonthToDate float64
	BasketSize  int
}

// History recomputes the per-day figures across a whole series. Dates
// whose figures are undefined are skipped.
func (c *Calculator) History(s *series.Series) []DailyFigure {
	dates := s.Dates()
	figures := make([]DailyFigure, 0, len(dates))

	for i := 1; i < len(dates); i++ {
		comparable := s.ComparableOn(dates[i])
		if len(comparable) == 0 {
			continue
		}
		dayOverDay, err := pairwiseChange(comparable, dates[i], dates[i-1])
		if err != nil {
			continue
		}
		monthToDate, err := pairwiseChange(comparable, dates[i], s.FirstDate())
		if err != nil {
			continue
		}
		figures = append(figures, DailyFigure{
			Date:        dates[i],
			DayOverDay:  dayOverDay,
			MonthToDate: monthToDate,
			BasketSize:  len(comparable),
		})
	}
	return figures
}

// pairwiseChange sums today's and the reference date's prices over the rows
// comparable on both and returns the rounded percentage change.
func pairwiseChange(records []*series.Record, today, reference string) (float64, error) {
	var sumToday, sumRef float64
	n := 0

	for _, rec := range records {
		pToday, ok := rec.Price(today)
		if !ok || !pToday.Comparable() {
			continue
		}
		pRef, ok := rec.Price(reference)
		if !ok || !pRef.Comparable() {
			continue
		}

		vToday, _ := pToday.Value()
		vRef, _ := pRef.Value()
		sumToday += vToday
		sumRef += vRef
		n++
	}

	if n == 0 {
		return 0, &ComputationError{Reason: fmt.Sprintf("no rows comparable on both %s and %s", today, reference)}
	}
	if sumRef == 0 {
		return 0, &ComputationError{Reason: fmt.Sprintf("zero price sum on %s", reference)}
	}

	return round2((sumToday - sumRef) / sumRef * 100), nil
}
