package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"wconnect/internal/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to <home>/config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.WriteConfig(appCtx.Config, force)
			if err != nil {
				return err
			}
			fmt.Println("Config written to", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.EncodeConfig(appCtx.Config)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}
