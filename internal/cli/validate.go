package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bulkops/internal/adapters"
	"bulkops/internal/app"
	"bulkops/internal/types"
)

type validateOptions struct {
	File     string
	AuthMode string
}

func newValidateCommand() *cobra.Command {
	opts := validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that an import file carries every required column",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.File, "file", "", "Input file (.csv, .xlsx)")
	cmd.Flags().StringVar(&opts.AuthMode, "auth-mode", string(types.AuthModeEmailInvite), "Authentication mode (identity_url|email_invite)")
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions) error {
	service := app.Service{Sources: adapters.NewFileRowSourceOpener()}
	result, err := service.ValidateInput(ctx, app.ValidateInputRequest{
		InputPath: opts.File,
		AuthMode:  types.AuthMode(resolveString(cmd, opts.AuthMode, "import.auth_mode", "auth-mode")),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", strings.Join(result.Columns, ","))
	return nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if configured := viper.GetString(key); configured != "" {
		return configured
	}
	return value
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return value
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
