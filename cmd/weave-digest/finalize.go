package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tatoflam/weave-digest/internal/digest"
)

var finalizeTitle string

var finalizeCmd = &cobra.Command{
	Use:   "finalize <tier>",
	Short: "Freeze a tier's shadow into a numbered immutable archive",
	Long:  "Writes the tier's accumulated shadow as the next numbered digest archive, updates the grand digest snapshot, clears the shadow, and pre-loads the next tier's accumulator. The next tier is never finalized automatically.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := args[0]

		proc, err := newProcessor()
		if err != nil {
			return err
		}

		result, err := proc.Finalize(tier, finalizeTitle)
		if err != nil {
			return eris.Wrap(err, "finalize")
		}

		fmt.Printf("finalized: %s #%d\n", result.Tier, result.Number)
		fmt.Printf("archive:   %s\n", result.ArchivePath)
		if result.Cascaded {
			fmt.Printf("cascaded into %s (count %d, state %s)\n", result.NextTier, result.NextCount, result.NextState)
			if result.NextState == digest.StateReady {
				fmt.Printf("tier %q is ready to finalize; run: weave-digest finalize %s --title <title>\n", result.NextTier, result.NextTier)
			}
		}
		return nil
	},
}

func init() {
	finalizeCmd.Flags().StringVar(&finalizeTitle, "title", "", "digest title (required)")
	_ = finalizeCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(finalizeCmd)
}
