package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/moodflow/internal/models"
)

const (
	openAIRequestTimeout = 30 * time.Second // Timeout for individual OpenAI API requests

	OPENAI_SENTIMENT_TEMPERATURE = 0.3
	OPENAI_SENTIMENT_MAX_TOKENS  = 50
	OPENAI_INSIGHT_TEMPERATURE   = 0.7
	OPENAI_INSIGHT_MAX_TOKENS    = 150
)

const sentimentSystemPrompt = `You analyze private journal entries.
Return the dominant emotion of the entry and a sentiment score.
- emotion: exactly one of happy, sad, anxious, stressed, angry, neutral
- sentiment: a number from 0 (very negative) to 1 (very positive), 0.5 is neutral
Respond only with the JSON object.`

// ErrQuotaExceeded is returned when the OpenAI account has run out of credit.
var ErrQuotaExceeded = errors.New("openai quota exceeded")

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

type OpenAIClient struct {
	Client *openai.Client
	Model  string
}

var sentimentResponseSchema = generateSchema[models.LLMSentimentResponse]()

func generateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// GetOpenAIClient returns the shared client. It panics when no API key is
// configured, callers check config.AIAvailable first.
func GetOpenAIClient(apiKey, model string) *OpenAIClient {
	if apiKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		panic("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}
	openAIOnce.Do(func() {
		httpClient := &http.Client{
			Timeout: openAIRequestTimeout,
		}
		openAIClientInstance = &OpenAIClient{
			Client: openai.NewClient(
				option.WithAPIKey(apiKey),
				option.WithHTTPClient(httpClient),
				option.WithMaxRetries(1),
			),
			Model: model,
		}
		slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
			slog.Duration("timeout", openAIRequestTimeout),
			slog.String("model", model))
	})
	return openAIClientInstance
}

// CompleteSentiment asks the model for an emotion and sentiment score using
// structured output.
func (c *OpenAIClient) CompleteSentiment(ctx context.Context, text string) (models.LLMSentimentResponse, error) {
	var result models.LLMSentimentResponse
	start := time.Now()

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        openai.F("journal_sentiment"),
		Description: openai.F("Emotion and sentiment of a journal entry"),
		Schema:      openai.F(sentimentResponseSchema),
		Strict:      openai.Bool(true),
	}

	completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(sentimentSystemPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(c.Model)),
		Temperature: openai.Float(OPENAI_SENTIMENT_TEMPERATURE),
		MaxTokens:   openai.Int(OPENAI_SENTIMENT_MAX_TOKENS),
		ResponseFormat: openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			openai.ResponseFormatJSONSchemaParam{
				Type:       openai.F(openai.ResponseFormatJSONSchemaTypeJSONSchema),
				JSONSchema: openai.F(schemaParam),
			},
		),
	})
	if err != nil {
		return result, fmt.Errorf("[OpenAIClient] sentiment completion failed: %w", classifyOpenAIError(err))
	}
	if len(completion.Choices) == 0 {
		return result, fmt.Errorf("[OpenAIClient] sentiment completion returned no choices")
	}

	raw := cleanOpenAIResponse(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		slog.Warn("[OpenAIClient] Failed to parse sentiment response",
			slog.String("error", err.Error()),
			getPreview([]byte(raw)))
		return result, fmt.Errorf("[OpenAIClient] failed to parse sentiment response: %w", err)
	}

	slog.Debug("[OpenAIClient] Sentiment completion successful",
		slog.String("emotion", result.Emotion),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// GenerateInsight returns a free-text completion for the insight prompts.
func (c *OpenAIClient) GenerateInsight(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	completion, err := c.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		}),
		Model:       openai.F(openai.ChatModel(c.Model)),
		Temperature: openai.Float(OPENAI_INSIGHT_TEMPERATURE),
		MaxTokens:   openai.Int(OPENAI_INSIGHT_MAX_TOKENS),
	})
	if err != nil {
		return "", fmt.Errorf("[OpenAIClient] insight completion failed: %w", classifyOpenAIError(err))
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("[OpenAIClient] insight completion was empty")
	}

	slog.Info("[OpenAIClient] Insight completion successful",
		slog.String("finish_reason", string(completion.Choices[0].FinishReason)),
		slog.Duration("elapsed", time.Since(start)))
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// HealthCheck verifies the configured model is reachable.
func (c *OpenAIClient) HealthCheck(ctx context.Context) error {
	if _, err := c.Client.Models.Get(ctx, c.Model); err != nil {
		return fmt.Errorf("[OpenAIClient] health check failed: %w", classifyOpenAIError(err))
	}
	return nil
}

func classifyOpenAIError(err error) error {
	if IsQuotaError(err) {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	return err
}

// IsQuotaError reports whether err means the account has no quota left.
func IsQuotaError(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == "insufficient_quota"
	}
	return strings.Contains(strings.ToLower(errString(err)), "quota")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// cleanOpenAIResponse strips markdown fences the model sometimes adds.
func cleanOpenAIResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
