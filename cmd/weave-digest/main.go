package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tatoflam/weave-digest/internal/config"
	"github.com/tatoflam/weave-digest/internal/digest"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "weave-digest",
	Short: "Multi-tier digest cascade for episodic text records",
	Long:  "Aggregates loop records into weekly digests and cascades finalized digests up through monthly, quarterly, annual, and coarser tiers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newProcessor wires the cascade processor from the loaded configuration.
func newProcessor() (*digest.Processor, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	return digest.NewProcessor(reg, cfg.Layout()), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
