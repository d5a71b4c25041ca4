package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tatoflam/weave-digest/internal/digest"
)

var statusCmd = &cobra.Command{
	Use:   "status [tier]",
	Short: "Show per-tier accumulation state and latest finalized digests",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proc, err := newProcessor()
		if err != nil {
			return err
		}

		tiers := proc.Registry().Order()
		if len(args) == 1 {
			tiers = []string{args[0]}
		}

		for _, tier := range tiers {
			st, err := proc.Status(tier)
			if err != nil {
				return eris.Wrap(err, "status")
			}
			printTierStatus(st)
		}
		return nil
	},
}

func printTierStatus(st *digest.TierStatus) {
	if st.Threshold > 0 {
		fmt.Printf("%-13s %-12s %d/%d", st.Tier, st.State, st.Count, st.Threshold)
	} else {
		fmt.Printf("%-13s %-12s %d", st.Tier, st.State, st.Count)
	}
	if st.Latest != nil {
		fmt.Printf("  latest: %s (%s)", st.Latest.Name, st.Latest.Timestamp)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
