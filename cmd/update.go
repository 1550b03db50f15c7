package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fifo-tools/jadm/pkg/jdb"
	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/spf13/cobra"
)

func NewUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <uuid>",
		Short: "Update the configuration of a jail",
		Long: `Update the configuration of a jail.

Without flags a JSON document is read on stdin and merged into the stored
configuration. Changes to limits and interfaces apply on the next start,
a changed quota applies immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: UpdateJail,
	}

	cmd.Flags().StringP("max-physical-memory", "m", "", "Set the memory cap, e.g. 512m or 2g")
	cmd.Flags().Bool("autostart", false, "Start the jail on `jadm startup`")

	return cmd
}

func UpdateJail(cmd *cobra.Command, args []string) error {
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
	config, err := applyUpdate(cmd, j.Config)
	if err != nil {
		return err
	}
	if config.UUID != j.Config.UUID {
		return fmt.Errorf("the uuid of jail %s can not be changed", uuid)
	}

	if config.Nics == nil {
		config.Nics = []types.NIC{}
	}
	data, err := json.Marshal(config)
	if err != nil {
		return err
	}
	if err := jdb.ValidateConfig(data); err != nil {
		return err
	}
	if err := checkHostMemory(config); err != nil {
		return err
	}
	if err := db.Update(config); err != nil {
		return err
	}
	if config.Quota != j.Config.Quota {
		if err := e.storage().SetQuota(cmd.Context(), j.Idx.Root, config.Quota); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Successfully updated jail", uuid)
	return nil
}

// applyUpdate returns config with the flags, or the JSON document on
// stdin when no flag is given, applied.
func applyUpdate(cmd *cobra.Command, config types.JailConfig) (types.JailConfig, error) {
	flags := cmd.Flags()
	if !flags.Changed("max-physical-memory") && !flags.Changed("autostart") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return config, fmt.Errorf("failed to read update: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to decode update: %w", err)
		}
		return config, nil
	}

	if flags.Changed("max-physical-memory") {
		size, _ := flags.GetString("max-physical-memory")
		mib, err := tools.ParseMiB(size)
		if err != nil {
			return config, err
		}
		config.MaxPhysicalMemory = mib
	}
	if flags.Changed("autostart") {
		config.Autostart, _ = flags.GetBool("autostart")
	}
	return config, nil
}
