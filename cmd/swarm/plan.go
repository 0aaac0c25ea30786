package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reedwhitmont/swarm/internal/config"
	"github.com/reedwhitmont/swarm/internal/orchestrator"
)

var (
	planDryRun bool
	planJSON   bool
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Plan a goal without running it",
	Long: `Plan a goal and print the resulting task breakdown without
executing it. The output is a YAML plan that can be edited and fed back
to "swarm run --plan-file".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := strings.Join(args, " ")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		customRoles, err := cfg.LoadRoles()
		if err != nil {
			return err
		}

		factory, err := buildFactory(cfg, planDryRun)
		if err != nil {
			return err
		}

		orch := orchestrator.New(orchestrator.Config{
			Factory: factory,
			Roles:   customRoles,
		})
		defer orch.Close()

		plan := orch.Plan(cmd.Context(), goal)

		var out []byte
		if planJSON {
			out, err = json.MarshalIndent(plan, "", "  ")
		} else {
			out, err = yaml.Marshal(plan)
		}
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}
		fmt.Print(string(out))
		if planJSON {
			fmt.Println()
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "Use the scripted agent instead of calling a model")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON instead of YAML")
}
