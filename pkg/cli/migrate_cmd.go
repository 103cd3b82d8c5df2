package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tablekit/internal/app"
	"tablekit/internal/db"
)

func newMigrateCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded demo migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := s.config()
			if cfg.DBProvider == app.ProviderMemory {
				return fmt.Errorf("nothing to migrate for the %s provider", app.ProviderMemory)
			}
			conn, dialect, err := db.Open(cfg.DBProvider, cfg.DatabaseURL, 1)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := app.Migrate(cmd.Context(), cfg, conn, dialect, quietLogger()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", cfg.DatabaseURL)
			return nil
		},
	}
}
