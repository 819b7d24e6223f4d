package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"onda/internal/adapters/storage"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version and the schema version it migrates to",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "onda %s (schema %d)\n", version, storage.LatestSchemaVersion())
	},
}
