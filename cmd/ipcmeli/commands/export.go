package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nachov/ipcmeli/internal/catalog"
	"github.com/nachov/ipcmeli/internal/export"
)

// exportCmd writes a month's series to an xlsx workbook.
var exportCmd = &cobra.Command{
	Use:   "export [month]",
	Short: "Exportar la serie de un mes a xlsx",
	Long: `Exporta la serie de precios de un mes (YYYY-MM) a un libro xlsx con
los nombres de categoría del catálogo, las cifras diarias del índice y las
tasas mensuales cerradas.

Example:
  go run ./cmd/ipcmeli export 2024-08
  go run ./cmd/ipcmeli export 2024-08 --out /tmp/agosto.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "archivo de salida (default <month>.xlsx en DATA_DIR)")
}

func runExport(cmd *cobra.Command, args []string) error {
	month := args[0]

	rt, err := initRuntime()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(filepath.Join(rt.cfg.DataDir, catalogFile), rt.log)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	outPath := exportOut
	if outPath == "" {
		outPath = filepath.Join(rt.cfg.DataDir, month+".xlsx")
	}

	exporter := export.New(rt.store, rt.ledger, rt.calc, cat, rt.log)
	if err := exporter.Month(month, outPath); err != nil {
		return fmt.Errorf("export %s: %w", month, err)
	}

	fmt.Printf("✅ Exported %s to %s\n", month, outPath)
	return nil
}
