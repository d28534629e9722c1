package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/domain"
	"github.com/KAS4453/tds-virtual-ta-22f3000668/internal/metrics"
)

// Generator produces answers via the OpenAI-compatible chat API,
// optionally grounded by an attached image.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Generate runs a single non-streaming chat completion. image, when
// non-nil, is attached as a JPEG data-URL content part. Quota/capacity
// failures are wrapped with domain.ErrGenerationQuota, everything else
// with domain.ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userText string, image []byte) (string, error) {
	userMessage := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(image) > 0 {
		userMessage.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: userText},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
				},
			},
		}
	} else {
		userMessage.Content = userText
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			userMessage,
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		classified := classifyGenerationError(err)
		status := "error"
		if errors.Is(classified, domain.ErrGenerationQuota) {
			status = "quota"
		}
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, status).Inc()
		return "", classified
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	return resp.Choices[0].Message.Content, nil
}

// classifyGenerationError separates quota/capacity failures (recoverable
// via the fallback answer) from everything else. Structured fields are
// checked first; the message-substring check remains as a fallback for
// OpenAI-compatible gateways that return plain errors.
func classifyGenerationError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
			return fmt.Errorf("generation API error %d: %s: %w",
				apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGenerationQuota)
		}
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("generation API error %d: %s: %w",
				apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGenerationQuota)
		}
		if isQuotaMessage(apiErr.Message) {
			return fmt.Errorf("generation API error %d: %s: %w",
				apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGenerationQuota)
		}
		return fmt.Errorf("generation API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGenerationFailed)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests || isQuotaMessage(string(reqErr.Body)) {
			return fmt.Errorf("generation API error %d: %w", reqErr.HTTPStatusCode, domain.ErrGenerationQuota)
		}
		return fmt.Errorf("generation API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrGenerationFailed)
	}

	if isQuotaMessage(err.Error()) {
		return fmt.Errorf("generation request failed: %v: %w", err, domain.ErrGenerationQuota)
	}
	return fmt.Errorf("generation request failed: %v: %w", err, domain.ErrGenerationFailed)
}

func isQuotaMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "insufficient")
}
