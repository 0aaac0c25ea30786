package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reedwhitmont/swarm/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the swarm version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("swarm %s\n", version.Get())
	},
}
