package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bulkops/internal/app"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the SQLite store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), cmd)
		},
	}
}

func runMigrate(ctx context.Context, cmd *cobra.Command) error {
	result, err := app.Migrate(ctx, app.MigrateRequest{Path: viper.GetString("store.path")})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "store at schema version %d\n", result.Version)
	return nil
}
