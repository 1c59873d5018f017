package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alvmarrod/web-atlas/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "webatlas version %s\n", version.Version)
		},
	}
}
