package gemini

import (
	"errors"
	"fmt"
	"testing"

	"wisp/internal/provider"

	"google.golang.org/genai"
)

func TestClassifyErrorRateLimit(t *testing.T) {
	statuses := []string{"RESOURCE_EXHAUSTED", "429 RESOURCE_EXHAUSTED", "Too Many Requests"}

	for _, status := range statuses {
		t.Run(status, func(t *testing.T) {
			err := classifyError(genai.APIError{Code: 429, Status: status, Message: "quota exhausted"})

			var pe *provider.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %T", err)
			}
			if !pe.IsRateLimit() {
				t.Errorf("status %q should classify as rate limit, got code %s", status, pe.Code)
			}
			if !pe.Retryable {
				t.Errorf("rate limit error should be retryable")
			}
		})
	}
}

func TestClassifyErrorRetryAfter(t *testing.T) {
	apiErr := genai.APIError{
		Code:    429,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted",
		Details: []map[string]any{
			{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "RATE_LIMIT_EXCEEDED"},
			{"@type": retryInfoType, "retryDelay": "17s"},
		},
	}

	var pe *provider.ProviderError
	if !errors.As(classifyError(apiErr), &pe) {
		t.Fatal("expected ProviderError")
	}
	if pe.RetryAfter != 17 {
		t.Errorf("RetryAfter = %d, want 17", pe.RetryAfter)
	}
}

func TestClassifyErrorNonRetryable(t *testing.T) {
	tests := []struct {
		status string
		code   provider.ErrorCode
	}{
		{"UNAUTHENTICATED", provider.ErrCodeAuthFailed},
		{"PERMISSION_DENIED", provider.ErrCodeAuthFailed},
		{"INVALID_ARGUMENT", provider.ErrCodeInvalidRequest},
		{"NOT_FOUND", provider.ErrCodeModelNotFound},
		{"UNAVAILABLE", provider.ErrCodeServiceUnavailable},
		{"INTERNAL", provider.ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			err := classifyError(genai.APIError{Code: 400, Status: tt.status, Message: "boom"})

			var pe *provider.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProviderError, got %T", err)
			}
			if pe.Code != tt.code {
				t.Errorf("code = %s, want %s", pe.Code, tt.code)
			}
			if pe.Retryable {
				t.Errorf("status %q should not be retryable", tt.status)
			}
		})
	}
}

func TestClassifyErrorNonAPIError(t *testing.T) {
	err := classifyError(fmt.Errorf("dial tcp: connection refused"))

	var pe *provider.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if pe.Code != provider.ErrCodeNetworkError {
		t.Errorf("code = %s, want %s", pe.Code, provider.ErrCodeNetworkError)
	}
}

func TestParseRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		details []map[string]any
		want    int
		wantOK  bool
	}{
		{
			name:    "well formed",
			details: []map[string]any{{"@type": retryInfoType, "retryDelay": "30s"}},
			want:    30,
			wantOK:  true,
		},
		{
			name:    "zero delay",
			details: []map[string]any{{"@type": retryInfoType, "retryDelay": "0s"}},
			want:    0,
			wantOK:  true,
		},
		{
			name:    "no retry info detail",
			details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.ErrorInfo"}},
			wantOK:  false,
		},
		{
			name:    "missing retryDelay field",
			details: []map[string]any{{"@type": retryInfoType}},
			wantOK:  false,
		},
		{
			name:    "non-string retryDelay",
			details: []map[string]any{{"@type": retryInfoType, "retryDelay": 30}},
			wantOK:  false,
		},
		{
			name:    "malformed duration",
			details: []map[string]any{{"@type": retryInfoType, "retryDelay": "soon"}},
			wantOK:  false,
		},
		{
			name:   "nil details",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseRetryDelay(tt.details)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("delay = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTurnConversionRoundTrip(t *testing.T) {
	turns := []provider.Turn{
		provider.NewTextTurn(provider.RoleUser, "what's the weather in Lisbon?"),
		provider.NewFunctionCallTurn("get_weather", map[string]any{"city": "Lisbon"}),
		provider.NewFunctionResponseTurn("get_weather", map[string]any{"result": "22C, sunny"}),
	}

	contents := toContents(turns)
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}

	if contents[0].Role != "user" || contents[0].Parts[0].Text != "what's the weather in Lisbon?" {
		t.Errorf("text turn converted badly: %+v", contents[0])
	}
	if contents[1].Role != "model" || contents[1].Parts[0].FunctionCall == nil {
		t.Fatalf("function call turn converted badly: %+v", contents[1])
	}
	if contents[1].Parts[0].FunctionCall.Args["city"] != "Lisbon" {
		t.Errorf("function call args lost: %+v", contents[1].Parts[0].FunctionCall)
	}
	if contents[2].Role != "user" || contents[2].Parts[0].FunctionResponse == nil {
		t.Fatalf("function response turn converted badly: %+v", contents[2])
	}

	back := fromContent(contents[1])
	if back.Role != provider.RoleModel || back.Parts[0].FunctionCall == nil {
		t.Errorf("round trip lost function call: %+v", back)
	}
}

func TestFromContentSkipsEmptyParts(t *testing.T) {
	turn := fromContent(&genai.Content{
		Role:  "model",
		Parts: []*genai.Part{nil, {Text: ""}, {Text: "hello"}},
	})

	if len(turn.Parts) != 1 || turn.Parts[0].Text != "hello" {
		t.Errorf("expected single text part, got %+v", turn.Parts)
	}
}
