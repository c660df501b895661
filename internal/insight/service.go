package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/persona/internal/llm"
)

// Service generates reflections.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates a reflection service. A nil provider yields a service
// whose Reflect always returns ErrUnavailable.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Available reports whether a provider is configured.
func (s *Service) Available() bool {
	return s != nil && s.provider != nil
}

// Reflect asks the model for a reflection on in.
func (s *Service) Reflect(ctx context.Context, in Input) (*Reflection, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}
	ctx = llm.WithPurpose(ctx, "reflection")
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(in)},
		},
		Schema:      ReflectionSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reflection generation: %w", err)
	}

	var out Reflection
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse reflection response: %w", err)
	}
	out.Headline = strings.TrimSpace(out.Headline)
	out.BorderlineNote = strings.TrimSpace(out.BorderlineNote)
	if len(in.Result.Borderline) == 0 {
		out.BorderlineNote = ""
	}
	out.Model = resp.Model
	return &out, nil
}
