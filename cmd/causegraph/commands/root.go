package commands

import (
	"github.com/spf13/cobra"

	"github.com/helixtrade/causegraph/internal/logging"
)

const Version = "0.1.0"

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "causegraph",
	Short: "Causal diagnosis engine for subsystem event streams",
	Long: `causegraph ingests subsystem events, links them into a causal influence
graph, and diagnoses the most likely root cause of the current disturbance,
including how the resulting cascade unfolded over time.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Initialize(logLevel)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	rootCmd.AddCommand(replayCmd)
}
