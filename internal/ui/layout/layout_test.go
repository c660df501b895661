package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestRenderFooter_DropsOverflowKeepsLast(t *testing.T) {
	hints := []KeyHint{
		{Key: "1-5", Description: "Answer"},
		{Key: "S", Description: "Skip"},
		{Key: "B", Description: "Back"},
		{Key: "Ctrl+C", Description: "Quit"},
	}

	wide := RenderFooter(hints, 120)
	for _, h := range hints {
		if !strings.Contains(wide, h.Description) {
			t.Errorf("wide footer missing %q", h.Description)
		}
	}

	narrow := RenderFooter(hints, 30)
	if !strings.Contains(narrow, "Quit") {
		t.Error("narrow footer should keep the last hint")
	}
	if strings.Contains(narrow, "Back") {
		t.Error("narrow footer should drop hints that do not fit")
	}
}

func TestRenderFrame_Height(t *testing.T) {
	header := RenderHeader("Home", "3/16", 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Quit"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 24)
	if got := lipgloss.Height(frame); got != 24 {
		t.Errorf("frame height = %d, want 24", got)
	}
	if !strings.Contains(frame, "3/16") {
		t.Error("header status missing")
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(79, 30) || !IsTooSmall(100, 23) || IsTooSmall(80, 24) {
		t.Error("IsTooSmall thresholds wrong")
	}
}
