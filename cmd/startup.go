package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func NewStartupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "startup",
		Short: "Start every jail marked autostart",
		Long:  "Start every jail marked autostart that is not already running. A jail failing to start does not stop the others.",
		Args:  cobra.NoArgs,
		RunE:  StartupJails,
	}
	return cmd
}

func StartupJails(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	controller := e.controller()
	var result *multierror.Error
	for _, entry := range db.Entries() {
		log := cmdLog.WithField("vm", entry.UUID)
		j, err := db.Load(entry.UUID)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if !j.Config.Autostart {
			continue
		}
		if j.Outer != nil {
			log.Debug("already running")
			continue
		}

		id, err := controller.Start(ctx, j)
		if err != nil {
			log.WithError(err).Error("failed to start jail")
			result = multierror.Append(result, fmt.Errorf("%s: %w", entry.UUID, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Started jail %s (id %d)\n", entry.UUID, id)
	}
	return result.ErrorOrNil()
}
