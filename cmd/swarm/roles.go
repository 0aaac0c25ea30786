package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reedwhitmont/swarm/internal/config"
	"github.com/reedwhitmont/swarm/internal/roles"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List available agent roles",
	Long: `List the built-in agent roles plus any custom roles from the
configured roles file. Custom roles with the same ID override the
built-ins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		customRoles, err := cfg.LoadRoles()
		if err != nil {
			return err
		}

		registry := roles.NewRegistry(customRoles)
		for _, role := range registry.All() {
			color.Cyan("%s (%s)", role.ID, role.Name)
			fmt.Printf("  %s\n", role.Description)
			if role.Model != "" {
				fmt.Printf("  model: %s\n", role.Model)
			}
			fmt.Println()
		}
		if cfg.Roles.File == "" {
			fmt.Printf("Define custom roles via roles.file in %s\n", config.UserConfigPath())
		}
		return nil
	},
}
