package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"fiberwatch.sh/internal/version"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	var (
		short bool
		json  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				fmt.Println(version.Version)
				return nil
			}

			if json {
				fmt.Printf(`{"version":"%s","commit":"%s","built":"%s","go":"%s","platform":"%s"}%s`,
					version.Version,
					version.CommitSHA,
					version.BuildTime,
					runtime.Version(),
					version.Platform(),
					"\n")
				return nil
			}

			fmt.Printf("%s\n", bold("fiberwatch"))
			fmt.Printf("Version:    %s\n", version.Version)
			fmt.Printf("Commit:     %s\n", version.CommitSHA)
			fmt.Printf("Built:      %s\n", version.BuildTime)
			fmt.Printf("Go Version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch:    %s\n", version.Platform())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	cmd.Flags().BoolVar(&json, "json", false, "Output version in JSON format")

	return cmd
}
