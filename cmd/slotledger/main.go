package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/slotledger/internal/config"
	"github.com/mmynk/slotledger/internal/storage/sqlite"
	"github.com/mmynk/slotledger/pkg/logging"
)

var (
	configPath string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:   "slotledger",
		Short: "Settlement ledger for transferred session slots",
		Long: `slotledger keeps the log of slots handed from one participant to another,
derives who owes whom, and runs settlement batches over date ranges.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logging.SetupWithLevel(logging.ParseLevel(cfg.Log.Level))
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importRecordsCmd)
	importCmd.AddCommand(importParticipantsCmd)
	rootCmd.AddCommand(overviewCmd)
	rootCmd.AddCommand(promoteCmd)
}

// openStore opens the configured database, running migrations.
func openStore() (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "database", cfg.DB.Path)
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
