// Command acenta is the partner-side client for the roadside-assistance
// platform: it follows live request tracking streams, shares a location,
// and manages insurance requests over the REST API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile string
	logLevel   string
	apiKeyFile string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "acenta",
		Short:         "Partner client for tow-truck and roadside-assistance requests",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file path (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.apiKeyFile, "api-key-file", "", "Read the partner API key from this file")

	rootCmd.AddCommand(
		newTrackCmd(opts),
		newShareLocationCmd(opts),
		newRequestsCmd(opts),
		newEstimateCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
