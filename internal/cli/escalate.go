package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Run one escalation sweep over open complaints and print the report",
	RunE:  runEscalate,
}

func runEscalate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	c, err := newContainer(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()
	if !c.postgres.Enabled() {
		logger.Warn("no POSTGRES_DSN; sweeping an empty in-memory store")
	}

	report := c.monitor.RunOnce(cmd.Context())
	logger.Info("escalation sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("escalated", report.Escalated),
		zap.Int("failed", report.Failed))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
