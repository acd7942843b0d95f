package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bulkops/internal/app"
	"bulkops/internal/types"
)

type importUsersOptions struct {
	File           string
	Actor          string
	AuthMode       string
	IdentityPrefix string
	AllowCreate    bool
	StartLine      int
	RemoveInput    bool
}

func newImportUsersCommand() *cobra.Command {
	opts := importUsersOptions{}
	cmd := &cobra.Command{
		Use:   "import-users",
		Short: "Import users, groups, roles and memberships from a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImportUsers(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.File, "file", "", "Input file (.csv, .xlsx)")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "Login of the user running the import")
	cmd.Flags().StringVar(&opts.AuthMode, "auth-mode", string(types.AuthModeEmailInvite), "Authentication mode (identity_url|email_invite)")
	cmd.Flags().StringVar(&opts.IdentityPrefix, "identity-prefix", "", "Identity provider prefix for identity_url mode")
	cmd.Flags().BoolVar(&opts.AllowCreate, "allow-create", false, "Create missing groups, roles and projects")
	cmd.Flags().IntVar(&opts.StartLine, "start-line", 0, "Skip rows before this line")
	cmd.Flags().BoolVar(&opts.RemoveInput, "remove-input", false, "Delete the input file after the run")
	_ = viper.BindPFlag("import.auth_mode", cmd.Flags().Lookup("auth-mode"))
	_ = viper.BindPFlag("import.identity_prefix", cmd.Flags().Lookup("identity-prefix"))
	_ = viper.BindPFlag("import.allow_create", cmd.Flags().Lookup("allow-create"))
	return cmd
}

func runImportUsers(ctx context.Context, cmd *cobra.Command, opts importUsersOptions) error {
	service, closeService, err := newAppService(ctx)
	if err != nil {
		return err
	}
	defer closeService()

	actorID, err := resolveActorID(ctx, service, opts.Actor)
	if err != nil {
		return err
	}
	result, err := service.ImportUsers(ctx, app.ImportUsersRequest{
		ActorID:        actorID,
		AuthMode:       types.AuthMode(resolveString(cmd, opts.AuthMode, "import.auth_mode", "auth-mode")),
		IdentityPrefix: resolveString(cmd, opts.IdentityPrefix, "import.identity_prefix", "identity-prefix"),
		AllowCreate:    resolveBool(cmd, opts.AllowCreate, "import.allow_create", "allow-create"),
		InputPath:      opts.File,
		StartLine:      resolveInt(cmd, opts.StartLine, "import.start_line", "start-line"),
		RemoveInput:    opts.RemoveInput,
	})
	if err != nil {
		return err
	}
	report := result.Report
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %d rows processed\n", report.RunID, report.Processed)
	fmt.Fprintf(out, "created: users=%d groups=%d roles=%d projects=%d\n",
		report.Created.Users, report.Created.Groups, report.Created.Roles, report.Created.Projects)
	printUnitErrors(cmd, report.Errors)
	return nil
}

func printUnitErrors(cmd *cobra.Command, errs []types.UnitError) {
	out := cmd.OutOrStdout()
	if len(errs) == 0 {
		fmt.Fprintln(out, "no errors")
		return
	}
	fmt.Fprintf(out, "%d errors:\n", len(errs))
	for _, line := range types.FormatUnitErrors(errs) {
		fmt.Fprintf(out, "  %s\n", line)
	}
}
