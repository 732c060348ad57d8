package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TriAiAdmin/LLM-automation/internal/extraction"
	"github.com/TriAiAdmin/LLM-automation/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newExtractCommand(a *app) *cobra.Command {
	var out string
	var normalize bool
	flags := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "extract <invoice.pdf|image|dir>...",
		Short: "Ask the vision model for the raw fields of every page",
		Long: `Rasterizes each PDF (or reads each image), sends every page to the
configured vision model and writes the raw page field maps as documents that
the normalize command accepts. With --normalize the documents are normalized
in the same run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, a)
			if err := a.cfg.ValidateExtraction(); err != nil {
				return err
			}
			if normalize {
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			files, err := collectFiles(args, extraction.SupportedFile)
			if err != nil {
				return err
			}

			extractor, err := extraction.NewVisionExtractor(extraction.VisionConfig{
				APIKey:      a.cfg.OpenAI.APIKey,
				BaseURL:     a.cfg.OpenAI.BaseURL,
				Model:       a.cfg.OpenAI.Model,
				Temperature: a.cfg.OpenAI.Temperature,
				MaxTokens:   a.cfg.OpenAI.MaxTokens,
				Timeout:     a.cfg.OpenAI.Timeout,

				RequestsPerMinute: a.cfg.OpenAI.RequestsPerMinute,
			}, a.logger)
			if err != nil {
				return err
			}
			rasterizer := extraction.NewPageRasterizer(a.cfg.OpenAI.DPI, a.cfg.OpenAI.MaxPages, a.logger)

			docs, err := a.extractAll(cmd, extractor, rasterizer, files)
			if err != nil {
				return err
			}

			if out != "" {
				if err := writeDocuments(out, docs); err != nil {
					return err
				}
				a.logger.Info("Extracted documents written", zap.String("path", out), zap.Int("documents", len(docs)))
			}
			if normalize {
				return a.runBatch(cmd.Context(), cmd, docs)
			}
			if out == "" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write extracted documents to this JSON file (stdout when empty and not normalizing)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "normalize the extracted documents in the same run")
	flags.register(cmd)
	return cmd
}

// extractAll extracts files concurrently, bounded by batch.workers, and keeps
// input order. A file that cannot be rasterized is logged and skipped.
func (a *app) extractAll(cmd *cobra.Command, extractor *extraction.VisionExtractor, rasterizer *extraction.PageRasterizer, files []string) ([]models.Document, error) {
	docs := make([]*models.Document, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(a.cfg.Batch.Workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			doc, err := extractor.ExtractDocument(ctx, rasterizer, path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.Error("Skipping document", zap.String("path", path), zap.Error(err))
				return nil
			}
			docs[i] = &doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d != nil {
			out = append(out, *d)
		}
	}
	if len(out) < len(files) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d files could not be extracted\n", len(files)-len(out), len(files))
	}
	return out, nil
}

func writeDocuments(path string, docs []models.Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode documents: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
