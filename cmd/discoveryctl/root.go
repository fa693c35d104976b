package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/app"
	"github.com/octobees/company-discovery/internal/config"
	"github.com/octobees/company-discovery/internal/database"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "discoveryctl",
	Short:        "Operator tool for the company discovery service",
	Long:         "Applies the schema, runs searches and scrapes against the live database, checks provider connectivity and manages service accounts.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openApp connects to the database and wires the application. The caller
// closes the returned pool.
func openApp(ctx context.Context) (*app.App, *pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return a, pool, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
