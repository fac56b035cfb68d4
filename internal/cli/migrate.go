package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/social-graph/pkg/database"
)

func NewMigrateCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database schema",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
