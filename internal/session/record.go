// Package session persists assessment sessions as one JSON file each and
// implements their lifecycle: created, in progress, completed.
package session

import (
	"time"

	"github.com/abhisek/persona/internal/ledger"
	"github.com/abhisek/persona/internal/scoring"
)

// IDLayout formats session IDs from their creation time.
const IDLayout = "20060102_150405"

// State is the lifecycle stage of a session.
type State int

const (
	StateCreated State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInProgress:
		return "in progress"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Record is the persisted form of a session.
type Record struct {
	ID              string              `json:"id"`
	TestLength      string              `json:"test_length"`
	TotalQuestions  int                 `json:"total_questions"`
	StartedAt       time.Time           `json:"started_at"`
	LastUpdated     time.Time           `json:"last_updated"`
	Responses       *ledger.Ledger      `json:"responses"`
	CurrentQuestion int                 `json:"current_question"`
	Completed       bool                `json:"completed"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	Result          *scoring.TypeResult `json:"mbti_result,omitempty"`
	// QuestionIDs is the presented question order. Records written before
	// it existed leave it empty.
	QuestionIDs []string `json:"question_ids,omitempty"`
}

// State derives the lifecycle stage from the record.
func (r *Record) State() State {
	switch {
	case r.Completed:
		return StateCompleted
	case r.Responses != nil && r.Responses.Len() > 0:
		return StateInProgress
	}
	return StateCreated
}

// Answered returns the number of recorded responses.
func (r *Record) Answered() int {
	if r.Responses == nil {
		return 0
	}
	return r.Responses.Len()
}

// Summary describes a stored session for listings.
type Summary struct {
	ID          string
	TestLength  string
	Answered    int
	Total       int
	Completed   bool
	LastUpdated time.Time
	Path        string
}

func summarize(r *Record, path string) Summary {
	return Summary{
		ID:          r.ID,
		TestLength:  r.TestLength,
		Answered:    r.CurrentQuestion,
		Total:       r.TotalQuestions,
		Completed:   r.Completed,
		LastUpdated: r.LastUpdated,
		Path:        path,
	}
}
