package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <uuid>",
		Short: "Start a jail",
		Args:  cobra.ExactArgs(1),
		RunE:  StartJail,
	}
	return cmd
}

func StartJail(cmd *cobra.Command, args []string) error {
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
	id, err := e.controller().Start(cmd.Context(), j)
	if err != nil {
		return fmt.Errorf("failed to start jail %s: %w", uuid, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Successfully started jail %s (id %d)\n", uuid, id)
	return nil
}
