package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ipcmeli",
	Short: "IPC Meli - índice de inflación diario basado en Mercado Libre",
	Long: `IPC Meli CLI

Rastrea diariamente los precios de una canasta de productos de Mercado
Libre, calcula un índice de inflación aproximado y publica el resumen.

Usage:
  go run ./cmd/ipcmeli [command]

Examples:
  go run ./cmd/ipcmeli run
  go run ./cmd/ipcmeli bootstrap
  go run ./cmd/ipcmeli scheduler start
  go run ./cmd/ipcmeli api
  go run ./cmd/ipcmeli export 2024-08`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
