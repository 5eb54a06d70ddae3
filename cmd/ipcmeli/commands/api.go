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

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Iniciar el servidor de la API de consulta",
	Long: `Inicia el servidor HTTP de solo lectura.

Endpoints:
  GET /health               - health check
  GET /api/series           - meses persistidos
  GET /api/series/{month}   - serie completa de un mes
  GET /api/index/latest     - última medición del índice
  GET /api/ledger           - tasas mensuales cerradas
  GET /api/jobs             - estado del scheduler

Example:
  go run ./cmd/ipcmeli api
  go run ./cmd/ipcmeli api --port 8089`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "puerto del servidor (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== IPC Meli API Server ===")

	rt, err := initRuntime()
	if err != nil {
		return err
	}

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	index := handlers.NewIndexHandler(rt.store, rt.ledger, rt.calc, rt.log)
	router := api.NewRouter(index, handlers.NewJobsHandler(nil), rt.log)
	server := api.New(rt.cfg, rt.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
