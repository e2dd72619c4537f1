package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fiberwatch.sh/internal/config"
	"fiberwatch.sh/internal/version"
)

var (
	cfgFile    string
	configUsed string
	apiURL     string
	verbose    bool
	noColor    bool

	// Color functions
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fiberwatch",
	Short: "fiberwatch - fiber-optic fault dashboard",
	Long: `fiberwatch is a terminal client for the fiber-optic fault detection
backend. It shows live network statistics, the distribution of detected
faults and recent measurements, and analyzes new optical readings on demand.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError("%v", err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the nearest ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "fault detection backend URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Bind flags to viper
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	rootCmd.AddCommand(
		newDashboardCmd(),
		newPredictCmd(),
		newSnapshotCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	v := viper.GetViper()
	config.Setup(v)

	used, err := config.ReadFile(v, cfgFile)
	if err != nil {
		return err
	}
	configUsed = used
	if used != "" && verbose {
		printInfo("Using config file: %s", used)
	}
	return nil
}

// Helper functions for consistent output

func printSuccess(format string, a ...any) {
	fmt.Printf("%s %s\n", green("[OK]"), fmt.Sprintf(format, a...))
}

func printError(format string, a ...any) {
	fmt.Printf("%s %s\n", red("[ERROR]"), fmt.Sprintf(format, a...))
}

func printWarning(format string, a ...any) {
	fmt.Printf("%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, a...))
}

func printInfo(format string, a ...any) {
	fmt.Printf("%s %s\n", blue("[INFO]"), fmt.Sprintf(format, a...))
}

func printHeader(text string) {
	fmt.Println(bold(text))
}
