package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all jails",
		Args:  cobra.NoArgs,
		RunE:  ListJails,
	}

	cmd.Flags().BoolP("json", "j", false, "Print the index entries in JSON format")

	return cmd
}

func listError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while listing jails: %w", iErr)
	return
}

func ListJails(cmd *cobra.Command, args []string) error {
	jsonFlag, err := cmd.Flags().GetBool("json")
	if err != nil {
		return listError(err)
	}

	e, err := newEnv(cmd)
	if err != nil {
		return listError(err)
	}
	db, err := e.open(cmd.Context())
	if err != nil {
		return listError(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	if !jsonFlag {
		return db.Print(cmd.OutOrStdout())
	}

	jsonBytes, err := json.MarshalIndent(db.Entries(), "", "  ")
	if err != nil {
		return listError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	return nil
}
