package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaan069/yolsepetigoAcenta/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "acenta %s\n", version.String())
		},
	}
}
