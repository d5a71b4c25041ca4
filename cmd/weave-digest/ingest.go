package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tatoflam/weave-digest/internal/digest"
)

var (
	ingestDigestType string
	ingestKeywords   []string
	ingestAbstract   string
	ingestImpression string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <tier>",
	Short: "Consume new source files into a tier's shadow digest",
	Long:  "Detects source files newer than the tier's watermark, folds their digests into the tier's shadow accumulator, and reports whether the tier is ready to finalize.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier := args[0]

		proc, err := newProcessor()
		if err != nil {
			return err
		}

		var update *digest.ShadowUpdate
		if ingestDigestType != "" || ingestAbstract != "" || ingestImpression != "" || len(ingestKeywords) > 0 {
			update = &digest.ShadowUpdate{
				DigestType: ingestDigestType,
				Keywords:   ingestKeywords,
				Abstract:   ingestAbstract,
				Impression: ingestImpression,
			}
		}

		result, err := proc.Ingest(tier, update)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}

		fmt.Printf("tier:      %s\n", result.Tier)
		fmt.Printf("new files: %d\n", len(result.NewFiles))
		for _, f := range result.NewFiles {
			fmt.Printf("  %s\n", f)
		}
		if result.Threshold > 0 {
			fmt.Printf("count:     %d / %d\n", result.Count, result.Threshold)
		} else {
			fmt.Printf("count:     %d\n", result.Count)
		}
		fmt.Printf("state:     %s\n", result.State)
		if result.State == digest.StateReady {
			fmt.Printf("tier %q is ready to finalize; run: weave-digest finalize %s --title <title>\n", tier, tier)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDigestType, "digest-type", "", "tier-level digest type to set on the shadow")
	ingestCmd.Flags().StringSliceVar(&ingestKeywords, "keyword", nil, "tier-level keywords to set on the shadow (repeatable)")
	ingestCmd.Flags().StringVar(&ingestAbstract, "abstract", "", "tier-level abstract text (passed through verbatim)")
	ingestCmd.Flags().StringVar(&ingestImpression, "impression", "", "tier-level impression text (passed through verbatim)")
	rootCmd.AddCommand(ingestCmd)
}
