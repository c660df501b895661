// Package report assembles the exported results document and renders it
// as JSON or text.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/persona/internal/insight"
	"github.com/abhisek/persona/internal/scoring"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/typedesc"
	"github.com/abhisek/persona/internal/validate"
)

// ErrNotCompleted is returned when building a document from a session that
// has no result yet.
var ErrNotCompleted = errors.New("session has no result")

// maxCareers caps the careers listed in text output.
const maxCareers = 8

// Metadata describes the test that produced a result.
type Metadata struct {
	SessionID      string    `json:"session_id,omitempty"`
	TestLength     string    `json:"test_length"`
	TotalQuestions int       `json:"total_questions"`
	CompletionTime string    `json:"completion_time"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Document is a complete result as exported.
type Document struct {
	scoring.TypeResult
	Breakdown  []scoring.DimensionBreakdown `json:"response_breakdown"`
	Analysis   *typedesc.Analysis           `json:"personality_analysis,omitempty"`
	Quality    *validate.Report             `json:"response_quality,omitempty"`
	Reflection *insight.Reflection          `json:"reflection,omitempty"`
	Metadata   Metadata                     `json:"test_metadata"`
}

// FromRecord builds a document from a completed session record. analysis
// may be nil when descriptions are unavailable for the type.
func FromRecord(rec *session.Record, analysis *typedesc.Analysis) (*Document, error) {
	if rec.Result == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotCompleted, rec.ID)
	}
	end := rec.LastUpdated
	if rec.CompletedAt != nil {
		end = *rec.CompletedAt
	}
	prog := session.ProgressAt(rec, end)

	var responses []int
	if rec.Responses != nil {
		responses = rec.Responses.Values()
	}
	quality := validate.CheckConsistency(responses)

	doc := &Document{
		TypeResult: *rec.Result,
		Analysis:   analysis,
		Quality:    &quality,
		Metadata: Metadata{
			SessionID:      rec.ID,
			TestLength:     rec.TestLength,
			TotalQuestions: rec.TotalQuestions,
			CompletionTime: session.FormatElapsed(prog.Elapsed),
			StartedAt:      rec.StartedAt,
			CompletedAt:    end,
		},
	}
	if rec.Responses != nil {
		doc.Breakdown = scoring.Breakdown(rec.Responses.Responses())
	}
	return doc, nil
}

// JSON encodes the document with indentation.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Text renders the document as a plain-text summary.
func (d *Document) Text(generated time.Time) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	rule := strings.Repeat("=", 60)
	sub := strings.Repeat("-", 40)

	lines = append(lines, rule, "PERSONALITY ASSESSMENT RESULTS", rule, "")
	add("Your Personality Type: %s", d.Type)
	if d.Analysis != nil && d.Analysis.Title != "" {
		add("Type Title: %s", d.Analysis.Title)
	}
	add("Overall Confidence: %.1f%% (%s)", d.Confidence, d.ConfidenceLevel)
	if d.SecondaryType != "" {
		add("Alternative Type: %s", d.SecondaryType)
	}
	lines = append(lines, "", "DIMENSION SCORES:", sub)
	for _, s := range d.Dimensions {
		label := s.PreferredLabel
		if s.IsBorderline {
			label += " *"
		}
		add("%-20s %.1f%%", label, s.Strength)
	}
	if len(d.Borderline) > 0 {
		lines = append(lines, "", "* balanced dimension:")
		for _, b := range d.Borderline {
			add("  %s: %s", b.Name, b.Scores)
		}
	}
	lines = append(lines, "")

	if a := d.Analysis; a != nil {
		if a.Overview != "" {
			lines = append(lines, "PERSONALITY OVERVIEW:", sub, a.Overview, "")
		}
		if len(a.Strengths) > 0 {
			lines = append(lines, "STRENGTHS:", sub)
			for _, s := range a.Strengths {
				add("• %s", s)
			}
			lines = append(lines, "")
		}
		if len(a.CareerMatches) > 0 {
			lines = append(lines, "RECOMMENDED CAREERS:", sub)
			for _, c := range a.CareerMatches[:min(len(a.CareerMatches), maxCareers)] {
				add("• %s", c)
			}
			lines = append(lines, "")
		}
	}

	if r := d.Reflection; r != nil {
		lines = append(lines, "REFLECTION:", sub, r.Headline, "", r.Summary)
		for _, tip := range r.GrowthTips {
			add("• %s", tip)
		}
		if r.BorderlineNote != "" {
			lines = append(lines, "", r.BorderlineNote)
		}
		lines = append(lines, "")
	}

	if d.Quality != nil && !d.Quality.Accepted {
		add("Note: %s", d.Quality.Message)
		lines = append(lines, "")
	}

	add("Test: %s, %d questions, completed in %s", d.Metadata.TestLength, d.Metadata.TotalQuestions, d.Metadata.CompletionTime)
	lines = append(lines, rule, "")
	add("Generated: %s", generated.Format(time.DateTime))
	return strings.Join(lines, "\n") + "\n"
}

// Encode renders the document in format f.
func (d *Document) Encode(f session.Format, now time.Time) ([]byte, error) {
	if f == session.FormatText {
		return []byte(d.Text(now)), nil
	}
	return d.JSON()
}

// FileName is persona_results_<TYPE>_<timestamp>.<ext>.
func (d *Document) FileName(f session.Format, now time.Time) string {
	code := d.Type
	if code == "" {
		code = "unknown"
	}
	return fmt.Sprintf("persona_results_%s_%s.%s", code, now.Format(session.IDLayout), f.Ext())
}

// Write saves the document into dir and returns the file path.
func Write(d *Document, f session.Format, dir string, now time.Time) (string, error) {
	data, err := d.Encode(f, now)
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, d.FileName(f, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	return path, nil
}
