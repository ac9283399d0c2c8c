package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/pizzabot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pizzabot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pizzabot version %s\n", strings.TrimSpace(pizzabot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
