package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"wconnect/internal/app"
	"wconnect/internal/logging"
)

var (
	home       string
	passphrase string
	bridgeURL  string
	ephemeral  bool
	appCtx     *app.App

	v = viper.New()
)

func Execute() error {
	root := &cobra.Command{
		Use:          "wconnect",
		Short:        "WalletConnect v1 client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.ConfigureRuntime("wconnect")
			if home == "" {
				dir, err := app.DefaultHome()
				if err != nil {
					return err
				}
				home = dir
			}
			app.SetDefaults(v, home)
			app.BindEnv(v)

			cfg, err := app.LoadConfig(v)
			if err != nil {
				return err
			}
			appCtx, err = app.New(cfg)
			return err
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&home, "home", "", "config dir (default ~/.wconnect)")
	flags.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the stored session key")
	flags.StringVar(&bridgeURL, "bridge", "", "bridge URL for new sessions (default "+app.DefaultBridge+")")
	flags.BoolVar(&ephemeral, "ephemeral", false, "keep the session in memory only")
	for _, name := range []string{"passphrase", "bridge", "ephemeral"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return err
		}
	}

	root.AddCommand(
		configCmd(),
		uriCmd(),
		sessionCmd(),
		approveCmd(),
		rejectCmd(),
		listenCmd(),
		callCmd(),
		killCmd(),
		statusCmd(),
		forgetCmd(),
	)
	return root.Execute()
}

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
