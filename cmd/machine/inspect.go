package main

import (
	"fmt"
	"io"

	"github.com/aretw0/machine/internal/builtins"
	"github.com/aretw0/machine/internal/inspect"
	"github.com/aretw0/machine/pkg/definition"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Show the normalized definition of a manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := definition.LoadFile(args[0], builtins.Registry())
			if err != nil {
				return err
			}
			def, err = definition.Normalize(def)
			if err != nil {
				return err
			}

			dump, _ := cmd.Flags().GetBool("dump")
			if dump {
				def.Fn = nil
				fmt.Fprintln(cmd.OutOrStdout(), inspect.Value(def))
				return nil
			}
			printDefinition(cmd.OutOrStdout(), def)
			return nil
		},
	}
	cmd.Flags().Bool("dump", false, "Print the full normalized definition")
	return cmd
}

func printDefinition(w io.Writer, def domain.Definition) {
	fmt.Fprintf(w, "Identity:    %s\n", def.Identity)
	if def.FriendlyName != "" {
		fmt.Fprintf(w, "Name:        %s\n", def.FriendlyName)
	}
	if def.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", def.Description)
	}
	fmt.Fprintf(w, "Sync:        %t\n", def.Sync)
	if def.Timeout > 0 {
		fmt.Fprintf(w, "Timeout:     %s\n", def.Timeout)
	}
	if def.ImplementationType != domain.ImplementationDefault {
		fmt.Fprintf(w, "Type:        %s\n", def.ImplementationType)
	}
	fmt.Fprintf(w, "Bound:       %t\n", def.Fn != nil)
	fmt.Fprintln(w, "Exits:")
	names := append([]string{domain.ExitSuccess, domain.ExitError}, def.CustomExits()...)
	for _, name := range names {
		if desc := def.Exits[name].Description; desc != "" {
			fmt.Fprintf(w, "  - %s: %s\n", name, desc)
			continue
		}
		fmt.Fprintf(w, "  - %s\n", name)
	}
}
