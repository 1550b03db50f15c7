package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/fifo-tools/jadm/pkg/jdb"
	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/spf13/cobra"
)

func NewCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a jail from a JSON configuration read on stdin",
		Long: `Create a jail from a JSON configuration read on stdin.

The jail root is cloned from a snapshot of the image dataset
<pool>/<image_uuid>. A uuid is generated when the configuration has none.`,
		Args: cobra.NoArgs,
		RunE: CreateJail,
	}
	return cmd
}

func CreateJail(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	config, err := jdb.DecodeConfig(data)
	if err != nil {
		return err
	}
	if err := checkHostMemory(config); err != nil {
		return err
	}

	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.open(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	entry, err := db.Insert(config)
	if err != nil {
		return err
	}
	if err := provision(cmd.Context(), e, entry, config); err != nil {
		if rmErr := db.Remove(entry.UUID); rmErr != nil {
			cmdLog.WithError(rmErr).WithField("vm", entry.UUID).Error("failed to remove jail after failed create")
		}
		return err
	}
	if err := db.SetState(entry.UUID, types.StateStopped); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Successfully created jail", entry.UUID)
	return nil
}

// provision clones the jail root from its image and applies the disk quota.
// On failure whatever it created is destroyed again.
func provision(ctx context.Context, e *env, entry types.IndexEntry, config types.JailConfig) (err error) {
	storage := e.storage()
	image := e.settings.Pool + "/" + config.ImageUUID

	var created []string
	defer func() {
		if err == nil {
			return
		}
		cleanupCtx := context.WithoutCancel(ctx)
		for i := len(created) - 1; i >= 0; i-- {
			if dErr := storage.Destroy(cleanupCtx, created[i]); dErr != nil {
				cmdLog.WithError(dErr).WithField("vm", entry.UUID).Warnf("failed to delete %s", created[i])
			}
		}
	}()

	snapshot, err := storage.Snapshot(ctx, image, entry.UUID)
	if err != nil {
		return err
	}
	created = append(created, snapshot)

	if err = storage.Clone(ctx, snapshot, entry.Root); err != nil {
		return err
	}
	created = append(created, entry.Root)

	if config.Quota > 0 {
		if err = storage.SetQuota(ctx, entry.Root, config.Quota); err != nil {
			return err
		}
	}
	return nil
}

// checkHostMemory rejects memory caps the host could never satisfy. It is
// skipped when the host memory cannot be read.
func checkHostMemory(config types.JailConfig) error {
	host, err := tools.HostMemoryMiB()
	if err != nil {
		cmdLog.WithError(err).Warn("skipping memory check")
		return nil
	}
	return tools.CheckMemoryCap(config.MaxPhysicalMemory, host)
}
