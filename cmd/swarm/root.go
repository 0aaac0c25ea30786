package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swarm",
	Short: "Multi-agent swarm orchestration",
	Long: `Swarm coordinates a team of role-specialized agents against a single
high-level goal. The goal is decomposed into a graph of dependent tasks,
executed under one of three protocols (sequential, parallel, debate),
with findings shared through a common blackboard.

Core capabilities:
- Plans a goal into dependency-ordered tasks via the planner role
- Runs tasks sequentially, in parallel dependency levels, or as a debate
- Shares typed findings between agents on the blackboard
- Records finished runs for later inspection`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits nonzero on failure. A failed
// run already reported itself, so only other errors are printed here.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
