// Package ledger holds the single ordered record of a test's answers.
// The session store persists it and the scoring engine reads it; neither
// keeps a copy of its own.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/abhisek/persona/internal/dimension"
)

// Response is one recorded answer.
type Response struct {
	QuestionID   string              `json:"question_id"`
	Dimension    dimension.Dimension `json:"dimension"`
	Value        int                 `json:"value"`
	ReverseCoded bool                `json:"reverse_coded"`
	Timestamp    time.Time           `json:"timestamp"`
}

// View is read-only access to a ledger.
type View interface {
	Responses() []Response
	Len() int
}

// Ledger is an ordered log of responses keyed by question ID. Entries keep
// the position of their first submission; re-recording an ID replaces the
// value in place.
type Ledger struct {
	entries []Response
	index   map[string]int
}

var _ View = (*Ledger)(nil)

// New builds a ledger from entries. A repeated question ID keeps its first
// position and its last value.
func New(entries ...Response) *Ledger {
	l := &Ledger{index: make(map[string]int, len(entries))}
	for _, r := range entries {
		l.Record(r)
	}
	return l
}

// Record stores r and reports whether it replaced an earlier answer.
func (l *Ledger) Record(r Response) (replaced bool) {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	if i, ok := l.index[r.QuestionID]; ok {
		l.entries[i] = r
		return true
	}
	l.index[r.QuestionID] = len(l.entries)
	l.entries = append(l.entries, r)
	return false
}

// Remove deletes the answer for id.
func (l *Ledger) Remove(id string) bool {
	i, ok := l.index[id]
	if !ok {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	l.reindex()
	return true
}

// Pop removes the most recently appended entry.
func (l *Ledger) Pop() (Response, bool) {
	if len(l.entries) == 0 {
		return Response{}, false
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	delete(l.index, last.QuestionID)
	return last, true
}

// Get returns the answer recorded for id.
func (l *Ledger) Get(id string) (Response, bool) {
	i, ok := l.index[id]
	if !ok {
		return Response{}, false
	}
	return l.entries[i], true
}

// Has reports whether id has an answer.
func (l *Ledger) Has(id string) bool {
	_, ok := l.index[id]
	return ok
}

// Responses returns a copy of the entries in order.
func (l *Ledger) Responses() []Response {
	out := make([]Response, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded responses.
func (l *Ledger) Len() int { return len(l.entries) }

// Values returns the raw answer values in order.
func (l *Ledger) Values() []int {
	out := make([]int, len(l.entries))
	for i, r := range l.entries {
		out[i] = r.Value
	}
	return out
}

// Tally counts answers per dimension.
func (l *Ledger) Tally() map[dimension.Dimension]int {
	out := make(map[dimension.Dimension]int, 4)
	for _, r := range l.entries {
		out[r.Dimension]++
	}
	return out
}

// MarshalJSON encodes the responses as an array in answer order.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON restores a ledger from its array form.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Response
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = *New(entries...)
	return nil
}

func (l *Ledger) reindex() {
	l.index = make(map[string]int, len(l.entries))
	for i, r := range l.entries {
		l.index[r.QuestionID] = i
	}
}
