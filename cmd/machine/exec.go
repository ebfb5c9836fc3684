package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/machine"
	"github.com/aretw0/machine/internal/builtins"
	"github.com/aretw0/machine/pkg/definition"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/spf13/cobra"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <manifest>",
		Short: "Run a machine once and print its result",
		Long:  `Loads a manifest, binds its fn to a builtin implementation (add, echo, fail, sleep, trigger) and runs it once. The result is printed as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runExec,
	}
	cmd.Flags().String("argins", "{}", "Argins as a JSON object")
	cmd.Flags().String("meta", "{}", "Metadata as a JSON object")
	cmd.Flags().Duration("wait", time.Minute, "Maximum time to wait for the execution to settle")
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	logger, err := loggerFor(cmd)
	if err != nil {
		return err
	}

	var argins domain.Argins
	rawArgins, _ := cmd.Flags().GetString("argins")
	if err := json.Unmarshal([]byte(rawArgins), &argins); err != nil {
		return fmt.Errorf("invalid --argins: %w", err)
	}
	var meta domain.Metadata
	rawMeta, _ := cmd.Flags().GetString("meta")
	if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
		return fmt.Errorf("invalid --meta: %w", err)
	}

	def, err := definition.LoadFile(args[0], builtins.Registry())
	if err != nil {
		return err
	}
	m, err := machine.Build(def, machine.WithLogger(logger))
	if err != nil {
		return err
	}

	d := m.Run(argins).Meta(meta)

	var result any
	if def.Sync {
		result, err = d.ExecSync()
	} else {
		wait, _ := cmd.Flags().GetDuration("wait")
		ctx, cancel := context.WithTimeout(cmd.Context(), wait)
		defer cancel()
		result, err = d.Await(ctx)
	}
	if err != nil {
		var exc *domain.Exception
		if errors.As(err, &exc) {
			return fmt.Errorf("exit %s: %w", exc.Code, err)
		}
		return fmt.Errorf("%s: %w", domain.Kind(err), err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("result is not JSON serializable: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
