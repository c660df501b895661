// Package insight asks a language model for a short personal reflection on
// a finished result. The feature is optional: with no provider configured
// the service reports ErrUnavailable and callers carry on without it.
package insight

import (
	"errors"
	"time"

	"github.com/abhisek/persona/internal/scoring"
	"github.com/abhisek/persona/internal/typedesc"
)

// ErrUnavailable is returned when no provider is configured.
var ErrUnavailable = errors.New("reflection unavailable: no LLM provider configured")

// Input is what the model is told about the result.
type Input struct {
	Result   scoring.TypeResult
	Analysis typedesc.Analysis
}

// Reflection is the generated commentary.
type Reflection struct {
	Headline       string   `json:"headline"`
	Summary        string   `json:"summary"`
	GrowthTips     []string `json:"growth_tips"`
	BorderlineNote string   `json:"borderline_note,omitempty"`
	Model          string   `json:"model"`
}

// Config holds reflection generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds one reflection including retries. Zero means no limit.
	Timeout time.Duration
}

// DefaultConfig returns the settings used by the app.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.7,
	}
}
