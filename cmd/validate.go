package cmd

import (
	"fmt"
	"os"

	"github.com/fifo-tools/jadm/pkg/jdb"
	"github.com/fifo-tools/jadm/pkg/logger"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the `validate` command for verifying a jail
// configuration document against the JSON Schema.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Validate a jail configuration against the jail JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	if err := jdb.ValidateConfig(data); err != nil {
		return err
	}

	logger.Println("Configuration is valid against the schema.")
	return nil
}
