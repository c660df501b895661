package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/logger"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/scoring"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)}
	s := NewStore(Config{Dir: t.TempDir()}, logger.Nop(), WithClock(clock.Now))
	return s, clock
}

func questions(n int) []questionbank.Question {
	dims := dimension.All()
	out := make([]questionbank.Question, n)
	for i := range out {
		out[i] = questionbank.Question{
			ID:           fmt.Sprintf("q%02d", i),
			Dimension:    dims[i%4],
			ReverseCoded: i%3 == 0,
		}
	}
	return out
}

func ids(qs []questionbank.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestCreate_PersistsImmediately(t *testing.T) {
	s, _ := newTestStore(t)
	rec := s.Create("short", 16, ids(questions(16)))

	assert.Equal(t, "20260314_092653", rec.ID)
	assert.Equal(t, StateCreated, rec.State())
	assert.FileExists(t, filepath.Join(s.Config().Dir, "session_20260314_092653.json"))

	loaded, err := s.Load(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, loaded.TotalQuestions)
	assert.Equal(t, 0, loaded.Answered())
	assert.Len(t, loaded.QuestionIDs, 16)
}

func TestCreate_SameSecondGetsSuffix(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Create("short", 16, nil)
	b := s.Create("short", 16, nil)
	assert.Equal(t, a.ID+"_2", b.ID)
}

func TestSubmit_AppendsAndOverwrites(t *testing.T) {
	s, clock := newTestStore(t)
	qs := questions(4)
	s.Create("short", 4, ids(qs))

	require.NoError(t, s.Submit(qs[0], 4))
	clock.Advance(time.Second)
	require.NoError(t, s.Submit(qs[1], 2))
	assert.Equal(t, 2, s.Current().CurrentQuestion)
	assert.Equal(t, StateInProgress, s.Current().State())

	require.NoError(t, s.Submit(qs[0], 5))
	assert.Equal(t, 2, s.Current().CurrentQuestion)
	r, ok := s.Current().Responses.Get("q00")
	require.True(t, ok)
	assert.Equal(t, 5, r.Value)
	assert.True(t, r.ReverseCoded)
	assert.Equal(t, "q00", s.Current().Responses.Responses()[0].QuestionID)
}

func TestSubmit_NoSession(t *testing.T) {
	s, _ := newTestStore(t)
	assert.ErrorIs(t, s.Submit(questions(1)[0], 3), ErrNoActiveSession)
}

func TestGoBack_ByIdentifier(t *testing.T) {
	s, _ := newTestStore(t)
	qs := questions(4)
	s.Create("short", 4, ids(qs))

	ok, err := s.GoBack()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Submit(qs[0], 1))
	require.NoError(t, s.Submit(qs[1], 2))
	require.NoError(t, s.Submit(qs[2], 3))

	ok, err = s.GoBack()
	require.NoError(t, err)
	assert.True(t, ok)
	rec := s.Current()
	assert.Equal(t, 2, rec.CurrentQuestion)
	assert.False(t, rec.Responses.Has("q02"))
	assert.Equal(t, 2, rec.Responses.Len())

	loaded, err := s.Load(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.CurrentQuestion)
	assert.Equal(t, 2, loaded.Responses.Len())
}

func TestGoBack_PositionalWithoutOrder(t *testing.T) {
	s, _ := newTestStore(t)
	qs := questions(3)
	s.Create("short", 3, nil)
	require.NoError(t, s.Submit(qs[0], 1))
	require.NoError(t, s.Submit(qs[1], 5))

	ok, err := s.GoBack()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, s.Current().Responses.Has("q00"))
	assert.False(t, s.Current().Responses.Has("q01"))
}

func TestMarkComplete_Irreversible(t *testing.T) {
	s, clock := newTestStore(t)
	qs := questions(1)
	s.Create("short", 1, ids(qs))
	require.NoError(t, s.Submit(qs[0], 5))
	clock.Advance(3 * time.Minute)

	res := scoring.TypeResult{Type: "ENTJ", Confidence: 80, ConfidenceLevel: scoring.LevelStrong}
	require.NoError(t, s.MarkComplete(res))
	rec := s.Current()
	assert.Equal(t, StateCompleted, rec.State())
	require.NotNil(t, rec.CompletedAt)
	assert.Equal(t, clock.Now(), *rec.CompletedAt)

	assert.ErrorIs(t, s.MarkComplete(res), ErrAlreadyCompleted)
	assert.ErrorIs(t, s.Submit(qs[0], 1), ErrAlreadyCompleted)
	_, err := s.GoBack()
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	loaded, err := s.Load(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Result)
	assert.Equal(t, "ENTJ", loaded.Result.Type)
}

func TestResume_AfterNAnswers(t *testing.T) {
	s, clock := newTestStore(t)
	qs := questions(8)
	rec := s.Create("short", 8, ids(qs))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Submit(qs[i], i%5+1))
	}
	clock.Advance(10 * time.Minute)

	// A fresh process.
	s2 := NewStore(s.Config(), logger.Nop(), WithClock(clock.Now))
	got, err := s2.Resume(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Responses.Len())
	assert.Equal(t, 5, got.CurrentQuestion)
	assert.Equal(t, clock.Now(), got.LastUpdated)
	assert.Equal(t, ids(qs), got.QuestionIDs)
	assert.Same(t, got, s2.Current())
}

func TestResume_PartialAndMissing(t *testing.T) {
	s, _ := newTestStore(t)
	rec := s.Create("short", 4, nil)

	got, err := s.Resume("0314_0926")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	for _, id := range []string{"", "nope", "../x", "*"} {
		_, err := s.Resume(id)
		assert.ErrorIs(t, err, ErrSessionNotFound, "id %q", id)
	}
}

func TestResume_CorruptIsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(s.Config().Dir, "session_20250101_000000.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Resume("20250101_000000")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	var pe *PersistenceError
	assert.True(t, errors.As(err, &pe))
}

func TestResumable_WindowAndOrder(t *testing.T) {
	s, clock := newTestStore(t)
	qs := questions(2)

	old := s.Create("short", 2, nil)
	require.NoError(t, s.Submit(qs[0], 3))
	clock.Advance(40 * time.Minute)

	mid := s.Create("medium", 2, nil)
	clock.Advance(time.Minute)
	recent := s.Create("long", 2, nil)
	clock.Advance(time.Minute)

	done := s.Create("short", 1, nil)
	require.NoError(t, s.MarkComplete(scoring.TypeResult{Type: "INFP"}))

	list, err := s.Resumable()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.Equal(t, mid.ID, list[1].ID)
	for _, sum := range list {
		assert.NotEqual(t, old.ID, sum.ID)
		assert.NotEqual(t, done.ID, sum.ID)
	}

	// Stale sessions are not deleted.
	_, err = s.Load(old.ID)
	assert.NoError(t, err)
}

func TestResumable_SkipsCorrupt(t *testing.T) {
	s, _ := newTestStore(t)
	s.Create("short", 4, nil)
	require.NoError(t, os.WriteFile(filepath.Join(s.Config().Dir, "session_bad.json"), []byte(`{"id": 3}`), 0o644))

	list, err := s.Resumable()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCleanup_RetentionNotResumeWindow(t *testing.T) {
	s, clock := newTestStore(t)
	dir := s.Config().Dir

	stale := s.Create("short", 4, nil)
	s.Detach()
	clock.Advance(2 * time.Hour)

	expired := s.Create("short", 4, nil)
	require.NoError(t, s.MarkComplete(scoring.TypeResult{Type: "ISTJ"}))
	s.Detach()
	// Rewrite with an old timestamp so it predates the retention period.
	rec, err := s.Load(expired.ID)
	require.NoError(t, err)
	rec.LastUpdated = clock.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, writeRecord(filepath.Join(dir, "session_"+expired.ID+".json"), rec))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "session_garbage.json"), []byte("garbage"), 0o644))

	rep, err := s.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Removed())
	assert.Len(t, rep.Expired, 1)
	assert.Len(t, rep.Corrupt, 1)

	// Outside the resume window but inside retention: kept.
	_, err = s.Load(stale.ID)
	assert.NoError(t, err)
	_, err = s.Load(expired.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCleanup_FallsBackToStartedAt(t *testing.T) {
	s, clock := newTestStore(t)
	rec := s.Create("short", 4, nil)
	s.Detach()

	path := filepath.Join(s.Config().Dir, "session_"+rec.ID+".json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["last_updated"] = "0001-01-01T00:00:00Z"
	raw, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	clock.Advance(DefaultRetention + time.Minute)
	rep, err := s.Cleanup()
	require.NoError(t, err)
	assert.Len(t, rep.Expired, 1)
}

func TestPersistFailureKeepsState(t *testing.T) {
	s, _ := newTestStore(t)
	qs := questions(2)
	s.Create("short", 2, nil)
	require.NoError(t, os.RemoveAll(s.Config().Dir))
	// A file where the directory was makes every write fail.
	require.NoError(t, os.WriteFile(s.Config().Dir, []byte("x"), 0o644))

	require.NoError(t, s.Submit(qs[0], 4))
	assert.Equal(t, 1, s.Current().CurrentQuestion)
	var pe *PersistenceError
	assert.True(t, errors.As(s.LastPersistError(), &pe))
}

func TestSchemaRejectsOutOfRangeValue(t *testing.T) {
	s, _ := newTestStore(t)
	doc := `{"id":"x","test_length":"short","total_questions":1,"started_at":"2026-01-01T00:00:00Z",
"last_updated":"2026-01-01T00:00:00Z","current_question":1,"completed":false,
"responses":[{"question_id":"q","dimension":"E_I","value":9}]}`
	require.NoError(t, os.WriteFile(filepath.Join(s.Config().Dir, "session_x.json"), []byte(doc), 0o644))
	_, err := s.Load("x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestClampCursor(t *testing.T) {
	s, _ := newTestStore(t)
	qs := questions(4)
	rec := s.Create("short", 4, nil)
	require.NoError(t, s.Submit(qs[0], 2))
	require.NoError(t, s.Submit(qs[1], 2))

	assert.False(t, s.ClampCursor(4))

	rec.CurrentQuestion = 9
	assert.True(t, s.ClampCursor(4))
	assert.Equal(t, 2, rec.CurrentQuestion)

	rec.CurrentQuestion = 2
	assert.True(t, s.ClampCursor(1))
	assert.Equal(t, 1, rec.CurrentQuestion)

	loaded, err := s.Load(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.CurrentQuestion)

	require.NoError(t, s.MarkComplete(scoring.TypeResult{Type: "ISTJ"}))
	assert.False(t, s.ClampCursor(0))
}

func TestCleanup_StaleTempFiles(t *testing.T) {
	s, clock := newTestStore(t)
	dir := s.Config().Dir
	require.NoError(t, os.MkdirAll(dir, 0o755))

	stale := filepath.Join(dir, ".session-123.tmp")
	fresh := filepath.Join(dir, ".session-456.tmp")
	for _, p := range []string{stale, fresh} {
		require.NoError(t, os.WriteFile(p, []byte("{"), 0o644))
	}
	old := clock.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	recent := clock.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(fresh, recent, recent))

	rep, err := s.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, rep.Temp)
	assert.Equal(t, 1, rep.Removed())
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}
