package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var markCmd = &cobra.Command{
	Use:   "mark <tier> <number>",
	Short: "Set a tier's last-processed watermark directly",
	Long:  "Administrative override for the last-processed record, for recovering from external-trigger-only cascades such as loop completion where no intermediate file captures the number. Never rewinds the watermark.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := args[0]
		number, err := strconv.Atoi(args[1])
		if err != nil || number < 0 {
			return eris.Errorf("mark: %q is not a valid sequence number", args[1])
		}

		proc, err := newProcessor()
		if err != nil {
			return err
		}

		if err := proc.LastProcessed().UpdateDirect(tier, number); err != nil {
			return eris.Wrap(err, "mark")
		}

		fmt.Printf("watermark for %s is now at least %d\n", tier, number)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markCmd)
}
