// Package extraction rasterizes invoice documents and asks a vision model for
// the raw field map of each page.
package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ChatClient is the part of the OpenAI client the extractor uses
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// VisionConfig configures the model call
type VisionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	// RequestsPerMinute caps calls to the model; 0 means unlimited
	RequestsPerMinute int
}

// VisionExtractor sends page images to a vision model and decodes the reply
// into a RawFieldMap
type VisionExtractor struct {
	client      ChatClient
	model       string
	temperature float32
	maxTokens   int
	retry       *RetryStrategy
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewVisionExtractor builds an extractor backed by the OpenAI API
func NewVisionExtractor(cfg VisionConfig, logger *zap.Logger) (*VisionExtractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return NewVisionExtractorWithClient(openai.NewClientWithConfig(clientCfg), cfg, logger), nil
}

// NewVisionExtractorWithClient uses the given client as is
func NewVisionExtractorWithClient(client ChatClient, cfg VisionConfig, logger *zap.Logger) *VisionExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return &VisionExtractor{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		retry:       NewRetryStrategy(),
		limiter:     limiter,
		logger:      logger,
	}
}

// SetRetryStrategy replaces the default backoff
func (e *VisionExtractor) SetRetryStrategy(s *RetryStrategy) {
	e.retry = s
}

// ExtractPage returns the raw fields of one JPEG page. A reply that is not a
// JSON object yields an empty map.
func (e *VisionExtractor) ExtractPage(ctx context.Context, page []byte) (models.RawFieldMap, error) {
	req := openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: fieldPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(page),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	var resp openai.ChatCompletionResponse
	err := e.retry.Do(ctx, func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}
		var callErr error
		resp, callErr = e.client.CreateChatCompletion(ctx, req)
		if callErr != nil {
			e.logger.Warn("Vision API call failed", zap.Error(callErr))
		}
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("vision API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return models.RawFieldMap{}, nil
	}

	content := resp.Choices[0].Message.Content
	fields, ok := decodeReply(content)
	if !ok {
		e.logger.Warn("Vision reply is not a JSON object", zap.Int("content_length", len(content)))
		return fields, nil
	}
	if err := ValidatePage(fields); err != nil {
		e.logger.Warn("Vision reply has unexpected value types", zap.Error(err))
	}
	return fields, nil
}

// ExtractPages extracts every page in order. A page whose call fails becomes
// an empty map so the document still normalizes with defaults; only
// cancellation is returned as an error.
func (e *VisionExtractor) ExtractPages(ctx context.Context, pages [][]byte) ([]models.RawFieldMap, error) {
	out := make([]models.RawFieldMap, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fields, err := e.ExtractPage(ctx, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.logger.Error("Page extraction failed, treating page as empty",
				zap.Int("page", i+1),
				zap.Error(err))
			fields = models.RawFieldMap{}
		}
		out[i] = fields
	}
	return out, nil
}

// Rasterizer renders a source file into JPEG pages
type Rasterizer interface {
	Rasterize(path string) ([][]byte, error)
}

// ExtractDocument rasterizes path and extracts each page. The document id is
// the file name.
func (e *VisionExtractor) ExtractDocument(ctx context.Context, r Rasterizer, path string) (models.Document, error) {
	pages, err := r.Rasterize(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to rasterize %s: %w", path, err)
	}

	fields, err := e.ExtractPages(ctx, pages)
	if err != nil {
		return models.Document{}, err
	}

	e.logger.Info("Document extracted",
		zap.String("document_id", filepath.Base(path)),
		zap.Int("pages", len(fields)))
	return models.Document{ID: filepath.Base(path), Pages: fields}, nil
}

// decodeReply strips markdown fences and surrounding prose, then decodes the
// outermost JSON object. Numbers are kept as json.Number so long identifiers
// survive unchanged.
func decodeReply(content string) (models.RawFieldMap, bool) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return models.RawFieldMap{}, false
	}

	dec := json.NewDecoder(strings.NewReader(s[start : end+1]))
	dec.UseNumber()

	var fields models.RawFieldMap
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return models.RawFieldMap{}, false
	}
	return fields, true
}
