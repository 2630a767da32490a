package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/voceapacientilor/vocea/internal/config"
	"github.com/voceapacientilor/vocea/internal/db"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/service"
)

// AdminCmd manages moderator rights. The web app never changes the admin flag.
func AdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Grant or revoke moderator rights",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "grant <email>",
		Short: "Make an existing account a moderator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setAdmin(args[0], true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <email>",
		Short: "Remove moderator rights from an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setAdmin(args[0], false)
		},
	})

	return cmd
}

func setAdmin(email string, isAdmin bool) error {
	return withDB(func(cfg *config.Config, conn *sqlx.DB) error {
		if err := db.RunMigrations(conn.DB, cfg.DBDriver); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		profiles := service.NewProfileService(repository.NewProfileRepository(conn))
		if err := profiles.SetAdmin(email, isAdmin); err != nil {
			return err
		}

		if isAdmin {
			fmt.Printf("%s is now a moderator\n", email)
		} else {
			fmt.Printf("%s is no longer a moderator\n", email)
		}
		return nil
	})
}
