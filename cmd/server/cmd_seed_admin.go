package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	accountStore "onda/internal/adapters/storage/account"
	"onda/internal/application/orchestrators"
	"onda/internal/logging"
)

var (
	seedEmail    string
	seedName     string
	seedPassword string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the first supreme account when the database has none",
	Long: `Creates a supreme account from the flags, falling back to auth.admin_* in the config.
Does nothing when any account already exists. The account must change its
password on first login.`,
	RunE: runSeedAdmin,
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedEmail, "email", "", "administrator email")
	seedAdminCmd.Flags().StringVar(&seedName, "name", "", "administrator full name")
	seedAdminCmd.Flags().StringVar(&seedPassword, "password", "", "initial password")
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.Shutdown()

	if seedEmail == "" {
		seedEmail = cfg.Auth.AdminEmail
	}
	if seedName == "" {
		seedName = cfg.Auth.AdminName
	}
	if seedPassword == "" {
		seedPassword = cfg.Auth.AdminPassword
	}
	if seedEmail == "" || seedPassword == "" {
		return errors.New("seed-admin needs --email and --password (or auth.admin_email and auth.admin_password)")
	}

	db, err := openDatabase(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	seeded, err := orchestrators.ExecuteSeedAdmin(cmd.Context(), orchestrators.UserDeps{
		AccountStore: accountStore.NewSQLStore(db),
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	}, seedEmail, seedName, seedPassword)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(cmd.OutOrStdout(), "accounts already exist, nothing seeded")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded supreme account %s\n", seedEmail)
	return nil
}
