package cmd

import (
	"fmt"

	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/spf13/cobra"
)

func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <uuid>",
		Short: "Stop a running jail",
		Long:  "Stop a running jail, removing its resource limits and network interfaces.",
		Args:  cobra.ExactArgs(1),
		RunE:  StopJail,
	}
	return cmd
}

func StopJail(cmd *cobra.Command, args []string) error {
	uuid := args[0]

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.open(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	j, err := db.Load(uuid)
	if err != nil {
		return err
	}
	if j.Outer == nil {
		return fmt.Errorf("jail %s is not running", uuid)
	}

	if err := e.controller().Stop(cmd.Context(), j); err != nil {
		return fmt.Errorf("failed to stop jail %s: %w", uuid, err)
	}
	if err := db.SetState(uuid, types.StateStopped); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Successfully stopped jail", uuid)
	return nil
}
