package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tatoflam/weave-digest/internal/digest"
)

var (
	provisionFile   string
	provisionNumber int
)

var provisionCmd = &cobra.Command{
	Use:   "provision <tier>",
	Short: "Submit individual digests into a tier's provisional working file",
	Long:  "Merges a JSON array of individual digests into the tier's provisional file for its upcoming archive number. Provisional entries override auto-derived entries for the same source file at ingest time.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := args[0]

		b, err := os.ReadFile(provisionFile)
		if err != nil {
			return eris.Wrap(err, "provision: read input")
		}
		var entries []digest.IndividualDigest
		if err := json.Unmarshal(b, &entries); err != nil {
			return eris.Wrap(err, "provision: parse input")
		}

		proc, err := newProcessor()
		if err != nil {
			return err
		}

		number := provisionNumber
		if number == 0 {
			number, err = proc.UpcomingNumber(tier)
			if err != nil {
				return eris.Wrap(err, "provision")
			}
		}

		if err := proc.Provisional().Merge(tier, number, entries); err != nil {
			return eris.Wrap(err, "provision")
		}

		fmt.Printf("merged %d individual digests into %s #%d\n", len(entries), tier, number)
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionFile, "file", "", "JSON file holding an array of individual digests (required)")
	provisionCmd.Flags().IntVar(&provisionNumber, "number", 0, "target archive number (default: the tier's upcoming number)")
	_ = provisionCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(provisionCmd)
}
