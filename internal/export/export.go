// Package export renders persisted series into xlsx workbooks for
// offline analysis.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/nachov/ipcmeli/internal/catalog"
	"github.com/nachov/ipcmeli/internal/inflation"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/logger"
)

const (
	pricesSheet  = "Precios"
	summarySheet = "Resumen"
	monthsSheet  = "Mensual"
)

// Exporter builds workbooks from the store, the ledger and the category
// catalog.
type Exporter struct {
	store   *series.Store
	ledger  *inflation.Ledger
	calc    *inflation.Calculator
	catalog *catalog.Table
	logger  *logger.Logger
}

// New creates an exporter.
func New(store *series.Store, ledger *inflation.Ledger, calc *inflation.Calculator, cat *catalog.Table, log *logger.Logger) *Exporter {
	return &Exporter{
		store:   store,
		ledger:  ledger,
		calc:    calc,
		catalog: cat,
		logger:  log.WithField("module", "export"),
	}
}

// Month writes one month's series and the ledger summary to outPath.
func (e *Exporter) Month(month, outPath string) error {
	s, err := e.store.Load(month)
	if err != nil {
		return fmt.Errorf("load series %s: %w", month, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", pricesSheet)
	if err := e.writePrices(f, s); err != nil {
		return err
	}
	if err := e.writeSummary(f, s); err != nil {
		return err
	}
	if err := e.writeMonths(f); err != nil {
		return err
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"month": month,
		"path":  outPath,
		"items": s.Len(),
	}).Info("Workbook exported")
	return nil
}

func (e *Exporter) writePrices(f *excelize.File, s *series.Series) error {
	dates := s.Dates()

	header := []interface{}{"item_id", "category_id", "category_name", "parent_name", "title"}
	for _, date := range dates {
		header = append(header, date)
	}
	if err := f.SetSheetRow(pricesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range s.Records() {
		var categoryName, parentName string
		if cat, ok := e.catalog.Get(rec.CategoryID); ok {
			categoryName = cat.Name
			parentName = cat.ParentName
		}

		row := []interface{}{rec.ItemID, rec.CategoryID, categoryName, parentName, rec.Title}
		for _, date := range dates {
			if p, ok := rec.Price(date); ok {
				if v, known := p.Value(); known {
					row = append(row, v)
					continue
				}
			}
			// Unavailable or absent observations export as blanks.
			row = append(row, nil)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row address: %w", err)
		}
		if err := f.SetSheetRow(pricesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", rec.ItemID, err)
		}
	}
	return nil
}

// writeSummary lists the per-day figures recomputed from the series.
func (e *Exporter) writeSummary(f *excelize.File, s *series.Series) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	header := []interface{}{"date", "day_over_day_pct", "month_to_date_pct", "basket_size"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}

	for i, fig := range e.calc.History(s) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("summary row address: %w", err)
		}
		row := []interface{}{fig.Date, fig.DayOverDay, fig.MonthToDate, fig.BasketSize}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %s: %w", fig.Date, err)
		}
	}
	return nil
}

// writeMonths lists the finalized monthly rates from the ledger.
func (e *Exporter) writeMonths(f *excelize.File) error {
	if _, err := f.NewSheet(monthsSheet); err != nil {
		return fmt.Errorf("create months sheet: %w", err)
	}

	header := []interface{}{"month", "inflation_pct"}
	if err := f.SetSheetRow(monthsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write months header: %w", err)
	}

	entries := e.ledger.Entries()
	months := make([]string, 0, len(entries))
	for month := range entries {
		months = append(months, month)
	}
	sort.Strings(months)

	for i, month := range months {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("months row address: %w", err)
		}
		row := []interface{}{month, entries[month]}
		if err := f.SetSheetRow(monthsSheet, cell, &row); err != nil {
			return fmt.Errorf("write months row %s: %w", month, err)
		}
	}
	return nil
}
