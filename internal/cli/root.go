// Package cli wires configuration, reference tables and the normalization
// engine into the invoice-normalizer commands.
package cli

import (
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/internal/config"
	"github.com/TriAiAdmin/LLM-automation/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app carries what every command needs once the root has loaded it
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "invoice-normalizer",
		Short:         "Normalize and validate fields extracted from supplier invoices",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (defaults and environment only when empty)")

	root.AddCommand(
		newNormalizeCommand(a),
		newExtractCommand(a),
		newValidateConfigCommand(a),
		newRunsCommand(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
