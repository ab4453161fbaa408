// Package handlers wires the CLI commands to the application services.
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prepwise/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "prepwise",
		Short: "Prepwise aggregates tech news and serves AI-assisted interview preparation insights.",
		Long: `Prepwise is the backend for an AI-assisted interview preparation platform.

It aggregates tech and career news from RSS feeds, Hacker News and Reddit,
and generates insights over user activity data through an LLM gateway.

Run 'prepwise serve' to start the HTTP API.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.prepwise.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewNewsCmd())
	rootCmd.AddCommand(NewInsightCmd())

	return rootCmd
}

// initConfig reads the config file and environment variables.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
