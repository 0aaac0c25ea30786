package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reedwhitmont/swarm/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show saved runs",
	Long: `Show runs saved with "swarm run --save". Without arguments the
most recent runs are listed; with a run ID the full record, including
the task breakdown and final output, is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := state.Open(state.DefaultPath())
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			return showRun(store, args[0])
		}
		return listRuns(store)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}

func listRuns(store *state.Store) error {
	runs, err := store.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no saved runs")
		return nil
	}

	for _, run := range runs {
		mark := color.GreenString("✓")
		if !run.Success {
			mark = color.RedString("✗")
		}
		fmt.Printf("%s %s  %-10s turns=%-3d %s  %s\n",
			mark, run.ID[:8], run.Protocol, run.TotalTurns,
			run.CreatedAt.Format("2006-01-02 15:04"), firstLine(run.Goal))
	}
	return nil
}

func showRun(store *state.Store, id string) error {
	run, err := store.GetRun(id)
	if err != nil {
		return err
	}

	color.Cyan("run %s", run.ID)
	fmt.Printf("goal:     %s\n", run.Goal)
	fmt.Printf("protocol: %s\n", run.Protocol)
	fmt.Printf("success:  %v\n", run.Success)
	fmt.Printf("turns:    %d\n", run.TotalTurns)
	fmt.Printf("duration: %s\n", run.Duration.Round(time.Millisecond))
	fmt.Println()

	for _, task := range run.Tasks {
		line := fmt.Sprintf("  [%s] %s (%s): %s", task.Status, task.ID, task.AssignedRole, firstLine(task.Description))
		if task.Error != "" {
			line += ": " + firstLine(task.Error)
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println(run.FinalOutput)
	return nil
}
