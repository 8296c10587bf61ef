package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/adapters/hookfile"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of hook files",
	Long: `Print the JSON Schema describing hook files, for editor completion
and validation of hand-written hooks.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

var schemaOut string

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().StringVarP(&schemaOut, "out", "o", "", "write the schema to a file instead of stdout")
}

func runSchema(_ *cobra.Command, _ []string) error {
	data, err := hookSchemaJSON()
	if err != nil {
		return err
	}
	if schemaOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(schemaOut, data, 0o600); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Generated JSON schema: %s\n", schemaOut)
	return nil
}

// hookSchema reflects the hook document type.
func hookSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	schema := r.Reflect(&hookfile.Document{})

	schema.ID = "https://github.com/hugo-lorenzo-mato/hookcfg/hook.schema.json"
	schema.Title = "hookcfg hook"
	schema.Description = "A workflow hook and the node it belongs to"
	return schema
}

func hookSchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(hookSchema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	return append(data, '\n'), nil
}
