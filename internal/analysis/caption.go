package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/metrics"

	openai "github.com/sashabaranov/go-openai"
)

// maxCaptionLen bounds the description stored in the catalog.
const maxCaptionLen = 300

const captionPrompt = "Describe this image in one short sentence for a photo catalog. " +
	"Mention the main subject and setting. Do not speculate about people's identities."

// Captioner produces a natural-language description of an image file.
type Captioner interface {
	Describe(ctx context.Context, path string) (string, error)
}

// CaptionConfig configures the caption stage.
type CaptionConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Confidence float64
}

// CaptionStage wraps a Captioner with the degradation policy: when the
// backend is missing or errors, the stage yields CaptionSentinel instead of
// failing the item. Confidence is a configured nominal value because the
// underlying model exposes no native confidence signal.
type CaptionStage struct {
	captioner  Captioner
	timeout    time.Duration
	confidence float64
}

// NewCaptionStage builds the caption stage. An empty API key means no
// backend is configured and every call degrades to the sentinel.
func NewCaptionStage(cfg CaptionConfig) *CaptionStage {
	var captioner Captioner
	if cfg.APIKey != "" {
		captioner = newOpenAICaptioner(cfg)
		logging.Info("Caption backend configured (model: %s)", cfg.Model)
	} else {
		logging.Warn("No caption backend configured, descriptions will be degraded")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &CaptionStage{
		captioner:  captioner,
		timeout:    timeout,
		confidence: cfg.Confidence,
	}
}

// Confidence returns the nominal confidence attached to captions.
func (s *CaptionStage) Confidence() float64 {
	return s.confidence
}

// Generate returns a caption for the file, or CaptionSentinel on any failure.
func (s *CaptionStage) Generate(ctx context.Context, path string) string {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("caption").Observe(time.Since(start).Seconds())
	}()

	if s.captioner == nil {
		metrics.StageDegradations.WithLabelValues("caption").Inc()
		return CaptionSentinel
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	caption, err := s.captioner.Describe(ctx, path)
	if err != nil {
		logging.Warn("Caption generation failed for %s: %v", path, err)
		metrics.StageDegradations.WithLabelValues("caption").Inc()
		return CaptionSentinel
	}

	if caption == "" {
		metrics.StageDegradations.WithLabelValues("caption").Inc()
		return CaptionSentinel
	}

	if len(caption) > maxCaptionLen {
		cut := maxCaptionLen
		for cut > 0 && !utf8.RuneStart(caption[cut]) {
			cut--
		}
		caption = caption[:cut]
	}
	return caption
}

// openAICaptioner calls an OpenAI-compatible vision chat endpoint with the
// image inlined as a data URI.
type openAICaptioner struct {
	client *openai.Client
	model  string
}

func newOpenAICaptioner(cfg CaptionConfig) *openAICaptioner {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAICaptioner{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (c *openAICaptioner) Describe(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	dataURI := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 80,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
