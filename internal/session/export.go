package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat accepts "json", "text" or "txt".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == FormatText {
		return "txt"
	}
	return "json"
}

// MarshalRecord encodes rec the way it is stored on disk.
func MarshalRecord(rec *Record) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

// RenderSummary renders rec as plain text.
func RenderSummary(rec *Record) string {
	var b strings.Builder
	b.WriteString("Persona Test Session\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Session ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "Started: %s\n", rec.StartedAt.Format(time.DateTime))
	fmt.Fprintf(&b, "Last Updated: %s\n", rec.LastUpdated.Format(time.DateTime))
	fmt.Fprintf(&b, "Test Length: %s\n", rec.TestLength)
	fmt.Fprintf(&b, "Questions: %d/%d\n", rec.CurrentQuestion, rec.TotalQuestions)
	fmt.Fprintf(&b, "Status: %s\n", rec.State())
	if rec.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", rec.CompletedAt.Format(time.DateTime))
	}
	if rec.Result != nil {
		fmt.Fprintf(&b, "\nResult: %s\n", rec.Result.Type)
		if rec.Result.SecondaryType != "" {
			fmt.Fprintf(&b, "Alternative: %s\n", rec.Result.SecondaryType)
		}
		fmt.Fprintf(&b, "Confidence: %.1f%% (%s)\n", rec.Result.Confidence, rec.Result.ConfidenceLevel)
	}
	return b.String()
}

// Encode renders rec in the given format.
func Encode(rec *Record, f Format) ([]byte, error) {
	if f == FormatText {
		return []byte(RenderSummary(rec)), nil
	}
	return MarshalRecord(rec)
}

// Export writes rec into dir as persona_session_<id>_<ts>.<ext> and
// returns the path. The session itself is not modified.
func Export(rec *Record, f Format, dir string, now time.Time) (string, error) {
	data, err := Encode(rec, f)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("persona_session_%s_%s.%s", rec.ID, now.Format(IDLayout), f.Ext())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
