package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"onda/internal/adapters/storage"
	"onda/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.Shutdown()

	db, err := openDatabase(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	v, err := storage.SchemaVersion(cmd.Context(), db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}
