package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pathway-engine/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the LearningPathway JSON Schema",
	Long: `Schema prints the JSON Schema that generated pathways must satisfy. The
same document is sent to the generative model and used to validate its output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := json.MarshalIndent(schema.ForPathway().Map(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling schema: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
