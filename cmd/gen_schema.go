package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fifo-tools/jadm/pkg/jdb"
	"github.com/fifo-tools/jadm/pkg/logger"
	"github.com/spf13/cobra"
)

// NewGenSchemaCommand creates the `gen-schema` command for generating the
// JSON Schema of jail configuration documents.
func NewGenSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "gen-schema",
		Short:  "Generate JSON Schema for jail configurations (hidden)",
		Hidden: true,
		RunE:   runGenSchema,
	}
	cmd.Flags().StringP("output", "o", "jail.schema.json", "Where to write the schema, - for stdout")
	return cmd
}

func runGenSchema(cmd *cobra.Command, args []string) error {
	out, err := json.MarshalIndent(jdb.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	schemaPath, _ := cmd.Flags().GetString("output")
	if schemaPath == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}
	if err := os.WriteFile(schemaPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write schema to %s: %w", schemaPath, err)
	}

	logger.Println("Schema generated at", schemaPath)
	return nil
}
