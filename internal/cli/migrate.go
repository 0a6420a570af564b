package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"outreach-backend/internal/shared/storage/db"
)

func (c *cli) migrateCommand() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (or roll back one with --down)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.DB == nil {
				return errors.New("migrate needs a database")
			}

			if down {
				err = db.RollbackMigration(cmd.Context(), rt.DB)
			} else {
				err = db.RunMigrations(cmd.Context(), rt.DB)
			}
			if err != nil {
				return err
			}
			version, err := db.MigrationVersion(cmd.Context(), rt.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	return cmd
}
