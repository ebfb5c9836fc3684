package main

import (
	"fmt"

	"github.com/aretw0/machine"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of machine",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "machine version %s\n", machine.Version)
		},
	}
}
