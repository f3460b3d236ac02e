package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "retromach",
	Short: "Retromach emulates a classic home computer on a shared " +
		"virtual timeline.",
	Long: `Retromach emulates a classic home computer. Every device advances ` +
		`on one shared integer timeline, so two runs with the same inputs ` +
		`produce bit-identical results.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
