package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tatoflam/weave-digest/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [store]",
	Short: "Print the JSON Schema for a persisted store format",
	Long:  "The digest stores are plain indented JSON and safe to hand-edit between runs; these schemas describe their expected shape. With no argument, lists the known store formats.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, name := range schema.Names() {
				fmt.Println(name)
			}
			return nil
		}

		b, err := schema.MarshalIndent(args[0])
		if err != nil {
			return eris.Wrap(err, "schema")
		}
		fmt.Println(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
