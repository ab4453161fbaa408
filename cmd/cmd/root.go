// Package cmd is the cobra entry point for the prepwise binary.
package cmd

import (
	"fmt"
	"os"

	"prepwise/cmd/handlers"
)

// Execute builds the root command with all subcommands and runs it.
func Execute() {
	rootCmd := handlers.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
