package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nachov/ipcmeli/internal/clock"
)

// bootstrapCmd builds a fresh series for the current month.
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Armar la canasta y la serie del mes actual",
	Long: `Arma una canasta nueva desde el universo de categorías del sitio,
consulta los precios iniciales y crea el archivo del mes.

Se niega a pisar un mes ya existente.

Example:
  go run ./cmd/ipcmeli bootstrap`,
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}

	run := clock.NewRun(rt.cfg.UTCOffsetHours)
	fmt.Printf("Bootstrapping series for %s\n", run.MonthKey())

	if err := rt.runner.Bootstrap(context.Background(), run); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	fmt.Println("✅ Series bootstrapped")
	return nil
}
