package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nachov/ipcmeli/internal/clock"
)

// runCmd executes one daily run immediately.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ejecutar la corrida diaria ahora",
	Long: `Ejecuta una corrida completa para la fecha actual:

- consulta los precios de la canasta del mes
- agrega la observación a la serie y la persiste
- calcula el índice del día
- publica el resumen

Example:
  go run ./cmd/ipcmeli run`,
	RunE: runDaily,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaily(cmd *cobra.Command, args []string) error {
	rt, err := initRuntime()
	if err != nil {
		return err
	}

	run := clock.NewRun(rt.cfg.UTCOffsetHours)
	fmt.Printf("Running daily index for %s\n", run.DateKey())

	if err := rt.runner.Daily(context.Background(), run); err != nil {
		return fmt.Errorf("daily run: %w", err)
	}

	fmt.Println("✅ Daily run completed")
	return nil
}
