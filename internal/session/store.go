package session

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/persona/internal/docschema"
	"github.com/abhisek/persona/internal/ledger"
	"github.com/abhisek/persona/internal/logger"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/scoring"
)

//go:embed record.schema.json
var recordSchema []byte

const (
	filePrefix = "session_"
	fileSuffix = ".json"
	tempGlob   = ".session-*.tmp"

	// staleTempAge is how old a leftover temp file must be before Cleanup
	// treats it as abandoned by a crashed write.
	staleTempAge = time.Hour

	DefaultResumeWindow = 30 * time.Minute
	DefaultRetention    = 7 * 24 * time.Hour
)

// Config controls where sessions live and how long they stay usable.
type Config struct {
	Dir          string
	ResumeWindow time.Duration
	Retention    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store persists session records as session_<id>.json files and holds the
// one active session of the process. Every state change is written through
// before the call returns.
type Store struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	current *Record
	path    string
	lastErr error
}

// NewStore creates a store over cfg.Dir. Zero durations fall back to the
// defaults.
func NewStore(cfg Config, log *logger.Logger, opts ...Option) *Store {
	if cfg.ResumeWindow <= 0 {
		cfg.ResumeWindow = DefaultResumeWindow
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{cfg: cfg, log: log.With("component", "session"), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Config returns the store's configuration with defaults applied.
func (s *Store) Config() Config { return s.cfg }

// Current returns the active session, or nil.
func (s *Store) Current() *Record { return s.current }

// Path returns the file backing the active session.
func (s *Store) Path() string { return s.path }

// LastPersistError returns the most recent write failure, cleared by the
// next successful write.
func (s *Store) LastPersistError() error { return s.lastErr }

// Detach forgets the active session without touching its file.
func (s *Store) Detach() {
	s.current = nil
	s.path = ""
}

// Create starts a new session and makes it active.
func (s *Store) Create(length string, total int, questionIDs []string) *Record {
	now := s.now()
	id := s.uniqueID(now.Format(IDLayout))
	rec := &Record{
		ID:             id,
		TestLength:     length,
		TotalQuestions: total,
		StartedAt:      now,
		LastUpdated:    now,
		Responses:      ledger.New(),
		QuestionIDs:    append([]string(nil), questionIDs...),
	}
	s.current = rec
	s.path = s.fileFor(id)
	s.save()
	s.log.Info("session created", "session_id", id, "test_length", length, "total", total)
	return rec
}

// uniqueID suffixes base with _2, _3, ... when a file for it exists.
func (s *Store) uniqueID(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(s.fileFor(id)); errors.Is(err, os.ErrNotExist) {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// Submit records value for q. A question already answered is overwritten
// in place and the cursor stays put; otherwise the answer is appended and
// the cursor advances.
func (s *Store) Submit(q questionbank.Question, value int) error {
	rec, err := s.mutable()
	if err != nil {
		return err
	}
	replaced := rec.Responses.Record(ledger.Response{
		QuestionID:   q.ID,
		Dimension:    q.Dimension,
		Value:        value,
		ReverseCoded: q.ReverseCoded,
		Timestamp:    s.now(),
	})
	if !replaced {
		rec.CurrentQuestion++
	}
	s.save()
	return nil
}

// GoBack moves the cursor back one question and drops that question's
// answer. It reports false at the first question.
func (s *Store) GoBack() (bool, error) {
	rec, err := s.mutable()
	if err != nil {
		return false, err
	}
	if rec.CurrentQuestion == 0 {
		return false, nil
	}
	rec.CurrentQuestion--
	removed := false
	if rec.CurrentQuestion < len(rec.QuestionIDs) {
		removed = rec.Responses.Remove(rec.QuestionIDs[rec.CurrentQuestion])
	}
	if !removed {
		rec.Responses.Pop()
	}
	s.save()
	return true, nil
}

// ClampCursor pulls the active session's cursor back inside both the
// recorded answers and limit presented questions. Files edited by hand can
// point past either. It reports whether the cursor moved.
func (s *Store) ClampCursor(limit int) bool {
	rec, err := s.mutable()
	if err != nil {
		return false
	}
	cursor := max(min(rec.CurrentQuestion, rec.Answered(), limit), 0)
	if cursor == rec.CurrentQuestion {
		return false
	}
	s.log.Warn("session cursor out of range", "session_id", rec.ID, "cursor", rec.CurrentQuestion, "clamped", cursor)
	rec.CurrentQuestion = cursor
	s.save()
	return true
}

// MarkComplete stores the final result. A completed session cannot be
// reopened.
func (s *Store) MarkComplete(result scoring.TypeResult) error {
	rec, err := s.mutable()
	if err != nil {
		return err
	}
	now := s.now()
	rec.Completed = true
	rec.CompletedAt = &now
	rec.Result = &result
	s.save()
	s.log.Info("session completed", "session_id", rec.ID, "type", result.Type)
	return nil
}

func (s *Store) mutable() (*Record, error) {
	if s.current == nil {
		return nil, ErrNoActiveSession
	}
	if s.current.Completed {
		return nil, ErrAlreadyCompleted
	}
	return s.current, nil
}

// Resume finds a stored session by exact ID, then by partial match against
// stored filenames, makes it active and refreshes its last-updated time.
func (s *Store) Resume(id string) (*Record, error) {
	rec, path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	s.current = rec
	s.path = path
	s.save()
	s.log.Info("session resumed", "session_id", rec.ID, "answered", rec.CurrentQuestion, "total", rec.TotalQuestions)
	return rec, nil
}

// Load reads a stored session without activating or modifying it.
func (s *Store) Load(id string) (*Record, error) {
	rec, _, err := s.find(id)
	return rec, err
}

func (s *Store) find(id string) (*Record, string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.ContainsAny(id, `/\*?[]`) {
		return nil, "", fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}

	path := s.fileFor(id)
	if _, err := os.Stat(path); err != nil {
		matches, _ := filepath.Glob(filepath.Join(s.cfg.Dir, filePrefix+"*"+id+"*"+fileSuffix))
		if len(matches) == 0 {
			return nil, "", fmt.Errorf("%w: %q", ErrSessionNotFound, id)
		}
		sort.Strings(matches)
		path = matches[0]
	}

	rec, err := readRecord(path)
	if err != nil {
		s.log.Warn("unreadable session file", "path", path, "error", err)
		return nil, "", fmt.Errorf("%w: %q: %w", ErrSessionNotFound, id, err)
	}
	return rec, path, nil
}

// Resumable lists incomplete sessions updated within the resume window,
// newest first. Unreadable files are skipped.
func (s *Store) Resumable() ([]Summary, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []Summary
	for _, sum := range all {
		if sum.Completed || now.Sub(sum.LastUpdated) >= s.cfg.ResumeWindow {
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

// List returns every readable stored session, newest first.
func (s *Store) List() ([]Summary, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, p := range paths {
		rec, err := readRecord(p)
		if err != nil {
			s.log.Debug("skipping unreadable session file", "path", p, "error", err)
			continue
		}
		out = append(out, summarize(rec, p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

// CleanupReport lists what Cleanup removed.
type CleanupReport struct {
	Expired []string
	Corrupt []string
	// Temp holds partial writes left behind by a crash.
	Temp []string
}

// Removed is the total number of deleted files.
func (r CleanupReport) Removed() int { return len(r.Expired) + len(r.Corrupt) + len(r.Temp) }

// Cleanup deletes session files older than the retention period, complete
// or not, along with files that cannot be parsed and stale temp files.
func (s *Store) Cleanup() (CleanupReport, error) {
	var rep CleanupReport
	paths, err := s.files()
	if err != nil {
		return rep, err
	}
	rep.Temp = s.removeStaleTemps()
	cutoff := s.now().Add(-s.cfg.Retention)
	for _, p := range paths {
		if p == s.path {
			continue
		}
		rec, err := readRecord(p)
		if err != nil {
			if rmErr := os.Remove(p); rmErr != nil {
				s.log.Warn("remove corrupt session file", "path", p, "error", rmErr)
				continue
			}
			rep.Corrupt = append(rep.Corrupt, p)
			s.log.Info("removed corrupt session file", "path", p, "error", err)
			continue
		}
		ts := rec.LastUpdated
		if ts.IsZero() {
			ts = rec.StartedAt
		}
		if !ts.Before(cutoff) {
			continue
		}
		if err := os.Remove(p); err != nil {
			s.log.Warn("remove expired session file", "path", p, "error", err)
			continue
		}
		rep.Expired = append(rep.Expired, p)
		s.log.Info("removed expired session", "session_id", rec.ID, "last_updated", ts)
	}
	return rep, nil
}

func (s *Store) removeStaleTemps() []string {
	if s.cfg.Dir == "" {
		return nil
	}
	temps, _ := filepath.Glob(filepath.Join(s.cfg.Dir, tempGlob))
	cutoff := s.now().Add(-staleTempAge)
	var removed []string
	for _, p := range temps {
		info, err := os.Stat(p)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(p); err != nil {
			s.log.Warn("remove stale temp file", "path", p, "error", err)
			continue
		}
		removed = append(removed, p)
		s.log.Info("removed stale temp file", "path", p)
	}
	return removed
}

func (s *Store) files() ([]string, error) {
	if s.cfg.Dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(s.cfg.Dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	paths, err := filepath.Glob(filepath.Join(s.cfg.Dir, filePrefix+"*"+fileSuffix))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return paths, nil
}

func (s *Store) fileFor(id string) string {
	return filepath.Join(s.cfg.Dir, filePrefix+id+fileSuffix)
}

// save stamps and writes the active record. Failures are logged and kept
// for LastPersistError; in-memory state is never rolled back.
func (s *Store) save() {
	if s.current == nil {
		return
	}
	s.current.LastUpdated = s.now()
	if err := writeRecord(s.path, s.current); err != nil {
		s.lastErr = err
		s.log.Error("persist session", "session_id", s.current.ID, "error", err)
		return
	}
	s.lastErr = nil
}

func writeRecord(path string, rec *Record) error {
	data, err := MarshalRecord(rec)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, tempGlob)
	if err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &PersistenceError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	if err := docschema.ValidateJSON("session-record", recordSchema, data); err != nil {
		return nil, &PersistenceError{Op: "validate", Path: path, Err: err}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	if rec.Responses == nil {
		rec.Responses = ledger.New()
	}
	return &rec, nil
}
