package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravgor/landmark-cli/internal/smoke"
)

var smokeBaseURL string

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Probe a running API through its happy path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if smokeBaseURL != "" {
			cfg.Smoke.BaseURL = smokeBaseURL
		}
		if err := cfg.Validate("smoke"); err != nil {
			return err
		}

		sum := smoke.New(cfg.Smoke, nil, os.Stdout).Run(cmd.Context())

		zap.L().Info("smoke run complete",
			zap.Int("passed", sum.Passed),
			zap.Int("failed", sum.Failed),
			zap.Int("skipped", sum.Skipped),
		)
		// Failed checks are diagnostic output, not an exit status.
		return nil
	},
}

func init() {
	smokeCmd.Flags().StringVar(&smokeBaseURL, "base-url", "", "API base URL (default from config)")
	rootCmd.AddCommand(smokeCmd)
}
