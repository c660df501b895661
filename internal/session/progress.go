package session

import (
	"fmt"
	"time"
)

// Progress is a snapshot of how far a session has got.
type Progress struct {
	Answered   int
	Total      int
	Remaining  int
	Percentage float64
	Elapsed    time.Duration
}

// ProgressAt reports rec's progress as of now.
func ProgressAt(rec *Record, now time.Time) Progress {
	p := Progress{Answered: rec.CurrentQuestion, Total: rec.TotalQuestions}
	if p.Total > 0 {
		p.Percentage = float64(p.Answered) / float64(p.Total) * 100
	}
	p.Remaining = max(p.Total-p.Answered, 0)
	end := now
	if rec.CompletedAt != nil {
		end = *rec.CompletedAt
	}
	if d := end.Sub(rec.StartedAt); d > 0 {
		p.Elapsed = d
	}
	return p
}

// FormatElapsed renders d as m:ss, or h:mm:ss from one hour up.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
