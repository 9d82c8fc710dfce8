package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/risk-cli/internal/config"
)

var (
	cfg *config.Config
	ref *config.Reference
)

var rootCmd = &cobra.Command{
	Use:   "risk-cli",
	Short: "AML risk profiling for professional-services client files",
	Long:  "Computes the regulatory risk score of a client file: service baseline, registry-matched client factors, table A/B aggregation, and the enhanced due-diligence escalation gate.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		r, err := config.LoadReference(cfg.ReferencePath)
		if err != nil {
			return fmt.Errorf("load reference data: %w", err)
		}
		ref = r

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
