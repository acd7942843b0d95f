package cli

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bulkops/internal/adapters"
	"bulkops/internal/app"
	"bulkops/internal/core"
)

func setConfigDefaults() {
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.path", "bulkops.db")
	viper.SetDefault("permissions.mode", "admin")
	viper.SetDefault("notify.mode", "log")
	viper.SetDefault("smtp.port", 25)
	viper.SetDefault("import.default_role", core.DefaultRoleName)
}

// addStoreFlags registers the flags shared by every command that opens the
// store.
func addStoreFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("store-driver", "", "Store driver (sqlite|memory)")
	flags.String("store-path", "", "SQLite store path")
	flags.String("store-seed", "", "YAML seed applied to the store on start")
	flags.String("permissions", "", "Permission mode (admin|casbin)")
	flags.String("policy", "", "Casbin policy file for the casbin permission mode")
	flags.String("notify", "", "Notification mode (log|file|smtp)")
	flags.String("notify-dir", "", "Directory for file notifications")
	_ = viper.BindPFlag("store.driver", flags.Lookup("store-driver"))
	_ = viper.BindPFlag("store.path", flags.Lookup("store-path"))
	_ = viper.BindPFlag("store.seed", flags.Lookup("store-seed"))
	_ = viper.BindPFlag("permissions.mode", flags.Lookup("permissions"))
	_ = viper.BindPFlag("permissions.policy", flags.Lookup("policy"))
	_ = viper.BindPFlag("notify.mode", flags.Lookup("notify"))
	_ = viper.BindPFlag("notify.dir", flags.Lookup("notify-dir"))
}

func serviceConfig() app.Config {
	return app.Config{
		StoreDriver:     viper.GetString("store.driver"),
		StorePath:       viper.GetString("store.path"),
		StoreSeed:       viper.GetString("store.seed"),
		PermissionsMode: viper.GetString("permissions.mode"),
		PolicyPath:      viper.GetString("permissions.policy"),
		NotifyMode:      viper.GetString("notify.mode"),
		NotifyDir:       viper.GetString("notify.dir"),
		SMTP: adapters.SMTPConfig{
			Host:     viper.GetString("smtp.host"),
			Port:     viper.GetInt("smtp.port"),
			From:     viper.GetString("smtp.from"),
			Username: viper.GetString("smtp.username"),
			Password: viper.GetString("smtp.password"),
		},
		DefaultRole: viper.GetString("import.default_role"),
		ScratchDir:  viper.GetString("scratch.dir"),
	}
}

// newAppService is replaced in tests.
var newAppService = func(ctx context.Context) (app.Service, func() error, error) {
	return app.NewService(ctx, serviceConfig())
}

// resolveActorID maps the --actor login to the user's id.
func resolveActorID(ctx context.Context, service app.Service, login string) (int64, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--actor is required")
	}
	user, found, err := service.Store.FindUserByLogin(ctx, login)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("user not found: " + login)
	}
	return user.ID, nil
}
