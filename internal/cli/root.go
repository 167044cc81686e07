// Package cli implements the Ikigai command-line interface using Cobra.
// Each subcommand is a thin view over the daemon's services.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagEphemeral bool
	flagCatalog   string
)

var rootCmd = &cobra.Command{
	Use:   "ikigai",
	Short: "Ikigai: wellness islands, modules and badges",
	Long: `Ikigai tracks your progress through themed wellness islands.
Complete questionnaire modules to earn points and badges, take daily
challenges, and level up every 500 points.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "Keep progress in memory only")
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Catalog TOML file replacing the built-in program")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
