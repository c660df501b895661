package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
// Results are newest first.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// where renders the sequence and time filters of o as SQL conditions.
func (o QueryOpts) where(conds []string, args []any) (string, []any) {
	if o.After > 0 {
		conds = append(conds, "sequence > ?")
		args = append(args, o.After)
	}
	if o.Before > 0 {
		conds = append(conds, "sequence < ?")
		args = append(args, o.Before)
	}
	if !o.From.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, formatTime(o.From))
	}
	if !o.To.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, formatTime(o.To))
	}
	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY sequence DESC")
	if o.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", o.Limit)
	}
	return b.String(), args
}

// Session lifecycle actions.
const (
	ActionStart    = "start"
	ActionResume   = "resume"
	ActionBack     = "back"
	ActionComplete = "complete"
	ActionAbandon  = "abandon"
	ActionCleanup  = "cleanup"
)

// SessionEventData describes one session lifecycle transition.
type SessionEventData struct {
	SessionID string
	Action    string
	Answered  int
	Total     int
	Detail    string
}

// SessionEvent is a stored SessionEventData.
type SessionEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures a single LLM call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates calls grouped by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo appends and queries the event log.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	QuerySessionEvents(ctx context.Context, sessionID string, opts QueryOpts) ([]SessionEvent, error)

	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns nil, nil when id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// ResultRecord is one completed assessment in the history.
type ResultRecord struct {
	ID              string
	SessionID       string
	Type            string
	SecondaryType   string
	Confidence      float64
	ConfidenceLevel string
	TestLength      string
	TotalResponses  int
	CompletedAt     time.Time
	// Payload is the full result document as JSON.
	Payload json.RawMessage
}

// ResultRepo stores completed assessments.
type ResultRepo interface {
	// SaveResult inserts rec, assigning an ID when it has none.
	SaveResult(ctx context.Context, rec *ResultRecord) error
	// ListResults returns results newest first. limit 0 means all.
	ListResults(ctx context.Context, limit int) ([]ResultRecord, error)
	// GetResult accepts a full ID or a unique prefix. It returns nil, nil
	// when nothing matches.
	GetResult(ctx context.Context, id string) (*ResultRecord, error)
	// TypeCounts tallies stored results per type code.
	TypeCounts(ctx context.Context) (map[string]int, error)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
