package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/TriAiAdmin/LLM-automation/internal/export"
	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/TriAiAdmin/LLM-automation/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// batchFlags override the output and batch sections of the config
type batchFlags struct {
	xlsxPath string
	jsonPath string
	workers  int
	store    bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.xlsxPath, "xlsx", "", "spreadsheet output path (overrides output.xlsx_path)")
	cmd.Flags().StringVar(&f.jsonPath, "json", "", `JSON output path, "-" for stdout (overrides output.json_path)`)
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "parallel documents (overrides batch.workers)")
	cmd.Flags().BoolVar(&f.store, "store", false, "save the run to the results database (overrides database.enabled)")
}

// apply copies the flags that were set onto the loaded config
func (f *batchFlags) apply(cmd *cobra.Command, a *app) {
	if cmd.Flags().Changed("xlsx") {
		a.cfg.Output.XLSXPath = f.xlsxPath
	}
	if cmd.Flags().Changed("json") {
		a.cfg.Output.JSONPath = f.jsonPath
	}
	if cmd.Flags().Changed("workers") {
		a.cfg.Batch.Workers = f.workers
	}
	if cmd.Flags().Changed("store") {
		a.cfg.Database.Enabled = f.store
	}
}

func newNormalizeCommand(a *app) *cobra.Command {
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "normalize <documents.json|dir>...",
		Short: "Normalize extracted page field maps into validated invoice records",
		Long: `Reads documents produced by the extract command (one object or an array
of {"document_id", "pages"} per file, directories are scanned for .json files),
normalizes every document and writes the records to the configured outputs.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			files, err := collectFiles(args, isJSONFile)
			if err != nil {
				return err
			}
			docs, err := readDocuments(files)
			if err != nil {
				return err
			}

			return a.runBatch(cmd.Context(), cmd, docs)
		},
	}
	flags.register(cmd)
	return cmd
}

// runBatch normalizes docs, persists the run when enabled and writes the
// configured outputs
func (a *app) runBatch(ctx context.Context, cmd *cobra.Command, docs []models.Document) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, _, err := a.buildEngine()
	if err != nil {
		return err
	}

	var store worker.ResultStore
	if a.cfg.Database.Enabled {
		s, closeFn, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeFn()
		store = s
	}

	result, err := worker.NewBatchRunner(engine, store, a.cfg.Batch.Workers, a.logger).Run(ctx, docs)
	if err != nil {
		return err
	}

	if path := a.cfg.Output.XLSXPath; path != "" {
		if err := export.WriteXLSX(path, a.cfg.Output.SheetName, result.Invoices); err != nil {
			return err
		}
		a.logger.Info("Spreadsheet written", zap.String("path", path))
	}

	summary := cmd.OutOrStdout()
	switch path := a.cfg.Output.JSONPath; path {
	case "":
	case "-":
		if err := export.WriteJSON(cmd.OutOrStdout(), result.Invoices); err != nil {
			return err
		}
		summary = cmd.ErrOrStderr()
	default:
		if err := export.WriteJSONFile(path, result.Invoices); err != nil {
			return err
		}
		a.logger.Info("JSON written", zap.String("path", path))
	}

	printSummary(summary, result, a.cfg.Database.Enabled)
	return nil
}

func printSummary(w io.Writer, result *worker.BatchResult, stored bool) {
	fmt.Fprintf(w, "Run %s: %d documents, %d with anomalies\n", result.RunID, len(result.Invoices), result.Flagged)
	if stored {
		fmt.Fprintf(w, "Stored in results database\n")
	}
}
