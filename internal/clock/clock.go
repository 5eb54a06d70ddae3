package clock

import (
	"fmt"
	"time"
)

// Run is the logical "now" of a single run. It is captured once at run start
// and passed explicitly into every component, so that a run crossing midnight
// still names columns and selects series consistently.
type Run struct {
	now time.Time
}

// NewRun captures the current time shifted to the market's UTC offset.
func NewRun(utcOffsetHours int) Run {
	loc := time.FixedZone(fmt.Sprintf("UTC%+d", utcOffsetHours), utcOffsetHours*3600)
	return Run{now: time.Now().UTC().In(loc)}
}

// At builds a Run pinned to an arbitrary reference time. Used by tests and
// by recomputation over historical series.
func At(t time.Time) Run {
	return Run{now: t}
}

// Time returns the reference time.
func (r Run) Time() time.Time {
	return r.now
}

// DateKey returns the reference date as YYYY-MM-DD, the column name format
// of the monthly series.
func (r Run) DateKey() string {
	return r.now.Format("2006-01-02")
}

// YesterdayKey returns the previous calendar date as YYYY-MM-DD.
func (r Run) YesterdayKey() string {
	return r.now.AddDate(0, 0, -1).Format("2006-01-02")
}

// MonthKey returns the reference month as YYYY-MM, the monthly series key.
func (r Run) MonthKey() string {
	return r.now.Format("2006-01")
}

// NextMonthKey returns the following month as YYYY-MM. The first of the next
// month is used rather than AddDate on the reference day to avoid the
// end-of-month normalization surprises (Jan 31 + 1 month = Mar 3).
func (r Run) NextMonthKey() string {
	firstOfMonth := time.Date(r.now.Year(), r.now.Month(), 1, 0, 0, 0, 0, r.now.Location())
	return firstOfMonth.AddDate(0, 1, 0).Format("2006-01")
}

// Year returns the reference year.
func (r Run) Year() int {
	return r.now.Year()
}

// Month returns the reference month (1-12).
func (r Run) Month() int {
	return int(r.now.Month())
}

// IsLastDayOfMonth reports whether the reference date is the last calendar
// day of its month, the trigger for ledger finalization and next-month
// bootstrap.
func (r Run) IsLastDayOfMonth() bool {
	return r.now.AddDate(0, 0, 1).Day() == 1
}

var spanishWeekdays = map[time.Weekday]string{
	time.Sunday:    "Domingo",
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
}

var spanishMonths = map[time.Month]string{
	time.January:   "Enero",
	time.February:  "Febrero",
	time.March:     "Marzo",
	time.April:     "Abril",
	time.May:       "Mayo",
	time.June:      "Junio",
	time.July:      "Julio",
	time.August:    "Agosto",
	time.September: "Septiembre",
	time.October:   "Octubre",
	time.November:  "Noviembre",
	time.December:  "Diciembre",
}

// SpanishDate renders the reference date for the published summary,
// e.g. "Lunes 5 de Agosto de 2024".
func (r Run) SpanishDate() string {
	return fmt.Sprintf("%s %d de %s de %d",
		spanishWeekdays[r.now.Weekday()],
		r.now.Day(),
		spanishMonths[r.now.Month()],
		r.now.Year(),
	)
}
