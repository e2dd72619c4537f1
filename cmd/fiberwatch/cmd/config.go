package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fiberwatch.sh/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect fiberwatch configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Load(viper.GetViper()); err != nil {
				printWarning("Configuration is invalid: %v", err)
			}
			b, err := config.Render(viper.GetViper())
			if err != nil {
				return err
			}
			fmt.Print(string(b))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configUsed == "" {
				printInfo("No config file found; using defaults and %s_* environment variables", config.EnvPrefix)
				return nil
			}
			fmt.Println(configUsed)
			return nil
		},
	})

	return cmd
}
