package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <uuid>",
		Short: "Print the configuration of a jail in JSON format",
		Args:  cobra.ExactArgs(1),
		RunE:  GetJail,
	}
	return cmd
}

func GetJail(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	db, err := e.open(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	j, err := db.Load(args[0])
	if err != nil {
		return err
	}
	jsonBytes, err := json.MarshalIndent(j.Config, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}
