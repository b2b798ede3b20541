// Package cli implements the eeat command line tool.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/eeat/pkg/logger"
)

// NewRootCmd builds the eeat command tree.
func NewRootCmd(version string) *cobra.Command {
	var (
		logFormat string
		logLevel  string
	)

	root := &cobra.Command{
		Use:   "eeat",
		Short: "Score web pages for Experience, Expertise, Authority and Trust",
		Long: `eeat classifies pages with an LLM, scores them against a weighted signal
catalog and reports per-page and domain-wide E-E-A-T percentages.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text or json")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(),
		newScoreCmd(),
		newAnalyzeCmd(),
		newCatalogCmd(),
	)
	return root
}
