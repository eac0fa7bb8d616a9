// Package cli implements the helmsman command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "helmsman",
	Short: "Control-authority arbitration for remotely operated vehicles",
	Long: "Arbitrates who controls the vehicle: the autonomy stack, the human\n" +
		"operator, or both. Decisions follow a strict priority chain (operator\n" +
		"override, hard safety rules, hysteresis, phase rules) and every one is\n" +
		"written to a hash-chained audit log.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config YAML (default ~/.helmsman/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
