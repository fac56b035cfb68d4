// Package cli implements socialctl, the admin command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-graph/config"
	"github.com/d60-Lab/social-graph/pkg/database"
	"github.com/d60-Lab/social-graph/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "socialctl",
		Short: "Administer the social graph service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if opts.Verbose {
				level = "debug"
			}
			return logger.Init(level, true)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	return cmd
}

// openDB loads config and opens the database without auto-migrating, so each
// command decides whether the schema is touched.
func openDB(ctx context.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	cfg.Database.AutoMigrate = false
	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, db.WithContext(ctx), nil
}
