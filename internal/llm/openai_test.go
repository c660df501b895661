package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newChatCompletionsProvider("test-key", srv.URL+"/v1", "gpt-4o-mini")
}

func TestOpenAIProvider_StructuredOutput(t *testing.T) {
	var got map[string]any
	p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `{"name":"Ada","age":36}`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "be brief",
		Messages:  []Message{{Role: RoleUser, Content: "who?"}},
		Schema:    personSchema(),
		MaxTokens: 100,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada","age":36}`, string(resp.Content))
	assert.Equal(t, 20, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)

	msgs, _ := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.NotNil(t, got["response_format"])
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl), "got %T: %v", err, err)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := chatServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","model":"gpt-4o-mini","choices":[]}`))
	})
	_, err := p.Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	assert.True(t, errors.As(err, &inv))
}

func TestNewProviders_RequireKeys(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)
	_, err = NewOpenRouterProvider(OpenRouterConfig{})
	assert.Error(t, err)
	_, err = NewAnthropicProvider(AnthropicConfig{})
	assert.Error(t, err)

	or, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "anthropic/claude-3-haiku"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", or.ModelID())
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tips": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"tone": map[string]any{"type": "string", "enum": []any{"warm", "neutral"}},
		},
		"required": []string{"tips"},
	})
	assert.Equal(t, []string{"tips"}, s.Required)
	require.Contains(t, s.Properties, "tips")
	assert.NotNil(t, s.Properties["tips"].Items)
	assert.Equal(t, []string{"warm", "neutral"}, s.Properties["tone"].Enum)
}
