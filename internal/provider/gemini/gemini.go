// Package gemini implements the Provider interface for Google Gemini
// using the official genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"wisp/internal/provider"
	"wisp/pkg/logger"

	"google.golang.org/genai"
)

// Compile-time interface check.
var _ provider.Provider = (*GeminiProvider)(nil)

const providerName = "gemini"

// retryInfoType is the proto type URL of the RetryInfo error detail that
// carries the server-advised retry delay.
const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

// rateLimitStatuses are the structured status values the API returns for
// rate/quota failures. Only these are classified as retryable.
var rateLimitStatuses = map[string]bool{
	"RESOURCE_EXHAUSTED":     true,
	"429 RESOURCE_EXHAUSTED": true,
	"Too Many Requests":      true,
}

// Config holds Gemini provider configuration.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// GeminiProvider implements the Provider interface for Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini provider.
func New(ctx context.Context, cfg Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return providerName
}

// Generate sends the full conversation to Gemini and returns the first
// candidate's content. Failures are classified into ProviderError so the
// caller can decide what is retryable.
func (p *GeminiProvider) Generate(ctx context.Context, req provider.GenerateRequest) (*provider.GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if len(req.Tools) > 0 {
		tools, err := toGenaiTools(req.Tools)
		if err != nil {
			return nil, fmt.Errorf("build tool declarations: %w", err)
		}
		config.Tools = tools
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, toContents(req.Turns), config)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		logger.Warn().Str("model", model).Msg("gemini returned no candidates")
		return nil, provider.NewProviderError(provider.ErrCodeUnknown, "empty response: no candidates", providerName)
	}

	return &provider.GenerateResponse{Turn: fromContent(resp.Candidates[0].Content)}, nil
}

// classifyError maps a genai SDK error to a ProviderError.
func classifyError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return provider.NewProviderError(provider.ErrCodeNetworkError, err.Error(), providerName)
	}

	if rateLimitStatuses[apiErr.Status] || apiErr.Code == 429 {
		retryAfter, _ := parseRetryDelay(apiErr.Details)
		return provider.NewRateLimitError(provider.ErrCodeRateLimited, apiErr.Message, providerName, retryAfter)
	}

	switch apiErr.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return provider.NewProviderError(provider.ErrCodeAuthFailed, apiErr.Message, providerName)
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION":
		return provider.NewProviderError(provider.ErrCodeInvalidRequest, apiErr.Message, providerName)
	case "NOT_FOUND":
		return provider.NewProviderError(provider.ErrCodeModelNotFound, apiErr.Message, providerName)
	case "UNAVAILABLE":
		return provider.NewProviderError(provider.ErrCodeServiceUnavailable, apiErr.Message, providerName)
	default:
		return provider.NewProviderError(provider.ErrCodeUnknown, apiErr.Message, providerName)
	}
}

// parseRetryDelay extracts the advised delay in seconds from the error
// detail list. The RetryInfo detail carries a retryDelay formatted as an
// integer with a trailing "s" unit suffix, e.g. "30s". Malformed metadata
// is not an error; the caller falls back to its default delay.
func parseRetryDelay(details []map[string]any) (int, bool) {
	for _, detail := range details {
		if detail["@type"] != retryInfoType {
			continue
		}
		raw, ok := detail["retryDelay"].(string)
		if !ok {
			logger.Debug().Interface("detail", detail).Msg("retry info without usable retryDelay")
			return 0, false
		}
		seconds, err := strconv.Atoi(strings.TrimSuffix(raw, "s"))
		if err != nil || seconds < 0 {
			logger.Debug().Str("retry_delay", raw).Msg("unparseable retryDelay, using default")
			return 0, false
		}
		return seconds, true
	}
	return 0, false
}
