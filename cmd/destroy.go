package cmd

import (
	"fmt"

	"github.com/fifo-tools/jadm/pkg/jdb"
	"github.com/spf13/cobra"
)

func NewDestroyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy <uuid>",
		Short: "Destroy a jail and its datasets",
		Long:  "Destroy a jail, stopping it first if it runs. Its dataset and the snapshot it was cloned from are deleted.",
		Args:  cobra.ExactArgs(1),
		RunE:  DestroyJail,
	}
	return cmd
}

func DestroyJail(cmd *cobra.Command, args []string) error {
	uuid := args[0]
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

	log := cmdLog.WithField("vm", uuid)
	log.Debug("Destroying jail")
	j, ok := db.Get(uuid)
	if !ok {
		return fmt.Errorf("could not find jail: %w: %s", jdb.ErrNotFound, uuid)
	}
	// only a running jail needs its config, to tear down its interfaces
	if j.Outer != nil {
		if j, err = db.Load(uuid); err != nil {
			return err
		}
		if err := e.controller().Stop(ctx, j); err != nil {
			return err
		}
	}

	storage := e.storage()
	origin, hasOrigin, originErr := storage.Origin(ctx, j.Idx.Root)
	if err := storage.Destroy(ctx, j.Idx.Root); err != nil {
		log.WithError(err).Warn("failed to delete dataset")
	} else {
		log.Debugf("zfs dataset deleted: %s", j.Idx.Root)
	}
	switch {
	case originErr != nil:
		log.WithError(originErr).Warn("failed to delete origin")
	case hasOrigin:
		if err := storage.Destroy(ctx, origin); err != nil {
			return err
		}
		log.Debugf("zfs snapshot deleted: %s", origin)
	}

	if err := db.Remove(uuid); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Successfully deleted jail", uuid)
	return nil
}

