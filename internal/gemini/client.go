// Package gemini implements integration with Google's Gemini AI API.
// It backs the bot's ask command.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/genai"

	"github.com/edgard/wabot/internal/config"
	"github.com/edgard/wabot/internal/resilience"
)

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("gemini returned empty content")

// Client defines the AI operations available to command handlers.
type Client interface {
	// Ask answers a single prompt. askedBy is the display name of the person asking.
	Ask(ctx context.Context, prompt, askedBy string) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	botName       string
	maxRetries    int
	retryDelay    time.Duration
	breaker       *resilience.Breaker
}

// NewClient creates a new Gemini AI client with the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, botName string, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	baseCfg := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction(botName, cfg.SystemInstruction)}},
		},
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "gemini",
		MaxFailures: cfg.BreakerFailures,
		OpenTimeout: cfg.BreakerTimeout,
	}, log)

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: baseCfg,
		modelName:     cfg.Model,
		botName:       botName,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
		breaker:       breaker,
	}, nil
}

func (c *sdkClient) Ask(ctx context.Context, prompt, askedBy string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	c.log.DebugContext(ctx, "Asking Gemini", "asked_by", askedBy, "prompt_length", len(prompt))

	contents := []*genai.Content{genai.NewContentFromText(formatPrompt(askedBy, prompt), genai.RoleUser)}

	var resp *genai.GenerateContentResponse
	err := c.breaker.Do(func() error {
		var err error
		resp, err = c.generateContentWithRetries(ctx, contents)
		return err
	})
	if err != nil {
		return "", err
	}
	return c.extractText(ctx, resp)
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	resp, err := retry.DoWithData(
		func() (*genai.GenerateContentResponse, error) {
			return c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)+1),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetriable),
		retry.OnRetry(func(n uint, err error) {
			c.log.WarnContext(ctx, "Gemini API call failed, retrying", "attempt", n+1, "max_retries", c.maxRetries, "error", err)
		}),
	)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return resp, nil
}

// isRetriable reports whether err is a transient server-side API error.
func isRetriable(err error) bool {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusInternalServerError || apiErr.Code == http.StatusServiceUnavailable
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("request blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("%w (finish reason: %s)", ErrEmptyResponse, finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
