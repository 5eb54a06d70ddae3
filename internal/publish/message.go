// Package publish formats the daily summary and dispatches it to the
// posting endpoint, with a failure-notification fallback.
package publish

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nachov/ipcmeli/internal/clock"
	"github.com/nachov/ipcmeli/internal/inflation"
)

// BuildMessage renders the daily Spanish summary for a computed result.
func BuildMessage(result *inflation.Result, run clock.Run) string {
	var emoji, monthVerb string
	switch {
	case result.DayOverDay > 0:
		emoji = "📈"
		monthVerb = "asciende a"
	case result.DayOverDay < 0:
		emoji = "📉"
		monthVerb = "desciende a"
	default:
		emoji = "👌"
		monthVerb = "se mantiene en"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🇦🇷 La inflación según Mercado Libre del día %s %s\n\n", run.SpanishDate(), emoji)
	fmt.Fprintf(&b, "⁉️ Se registró una inflación del %s%%\n", formatPct(result.DayOverDay))

	if result.MonthClosed {
		fmt.Fprintf(&b, "🗓️ El mes cerró con una tasa de inflación del %s%%\n", formatPct(result.MonthToDate))
	} else {
		fmt.Fprintf(&b, "🗓️ La tasa mensual %s %s%%\n", monthVerb, formatPct(result.MonthToDate))
	}

	if result.YearToDate != nil {
		fmt.Fprintf(&b, "📊 La inflación acumulada del año es del %s%%\n", formatPct(*result.YearToDate))
	}

	return b.String()
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
