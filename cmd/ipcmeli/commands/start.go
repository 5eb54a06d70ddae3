package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nachov/ipcmeli/internal/api"
	"github.com/nachov/ipcmeli/internal/api/handlers"
)

// startCmd runs the scheduler and the API server in one process.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Iniciar scheduler y API juntos",
	Long: `Inicia el servicio completo: el scheduler con la corrida diaria y el
servidor HTTP de consulta, en un solo proceso.

Example:
  go run ./cmd/ipcmeli start`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	fmt.Println("=== IPC Meli ===")

	rt, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	sched.Start()
	fmt.Println("✅ Scheduler started")

	index := handlers.NewIndexHandler(rt.store, rt.ledger, rt.calc, rt.log)
	router := api.NewRouter(index, handlers.NewJobsHandler(sched), rt.log)
	server := api.New(rt.cfg, rt.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	fmt.Printf("✅ API server listening on :%s\n", rt.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sched.Stop()
		return err
	case <-quit:
	}

	fmt.Println("\nShutting down...")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
