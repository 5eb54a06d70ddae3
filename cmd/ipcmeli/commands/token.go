package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nachov/ipcmeli/internal/secrets"
	"github.com/nachov/ipcmeli/pkg/config"
)

// tokenCmd manages the obfuscated refresh-token file.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Administrar el refresh token de Mercado Libre",
	Long: `Administra el archivo ofuscado donde vive el refresh token.

Subcommands:
  seed  - guardar un refresh token nuevo
  show  - mostrar el token guardado

Example:
  go run ./cmd/ipcmeli token seed TG-XXXX`,
}

var (
	tokenSeedCmd = &cobra.Command{
		Use:   "seed [refresh_token]",
		Short: "Guardar un refresh token nuevo",
		Args:  cobra.ExactArgs(1),
		RunE:  seedToken,
	}

	tokenShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Mostrar el token guardado",
		RunE:  showToken,
	}
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSeedCmd)
	tokenCmd.AddCommand(tokenShowCmd)
}

func seedToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := secrets.NewXORFileStore(cfg.Meli.TokenFile, cfg.Meli.SecretKey)
	if err := store.Save(args[0]); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	fmt.Printf("✅ Token saved to %s\n", cfg.Meli.TokenFile)
	return nil
}

func showToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store := secrets.NewXORFileStore(cfg.Meli.TokenFile, cfg.Meli.SecretKey)
	token, err := store.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}

	fmt.Println(token)
	return nil
}
