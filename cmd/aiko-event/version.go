package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aikocorp/aiko-events-go/aiko"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		Args:  cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cobraCmd.OutOrStdout(), aiko.VersionHeaderValue())
			return err
		},
	}
}
