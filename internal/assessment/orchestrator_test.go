package assessment

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/insight"
	"github.com/abhisek/persona/internal/llm"
	"github.com/abhisek/persona/internal/logger"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/store"
	"github.com/abhisek/persona/internal/typedesc"
	"github.com/abhisek/persona/internal/validate"
)

type fixture struct {
	dir      string
	clock    *time.Time
	db       *store.Store
	sessions *session.Store
	orch     *Orchestrator
}

func newFixture(t *testing.T, ins *insight.Service) *fixture {
	t.Helper()
	qs, err := questionbank.Default()
	require.NoError(t, err)
	types, err := typedesc.Default()
	require.NoError(t, err)

	db, err := store.Open(filepath.Join(t.TempDir(), "persona.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	f := &fixture{dir: t.TempDir(), clock: &now, db: db}
	f.sessions = session.NewStore(session.Config{Dir: f.dir}, logger.Nop(), session.WithClock(f.now))
	f.orch = New(Options{
		Questions: qs,
		Types:     types,
		Sessions:  f.sessions,
		Events:    db.EventRepo(),
		Results:   db.ResultRepo(),
		Insight:   ins,
		ExportDir: filepath.Join(f.dir, "exports"),
		Rand:      rand.New(rand.NewPCG(7, 11)),
		Now:       f.now,
	})
	return f
}

func (f *fixture) now() time.Time { return *f.clock }

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

// answerFor picks the raw value that pushes q fully toward INTJ.
func answerFor(q questionbank.Question) int {
	adjusted := map[dimension.Dimension]int{
		dimension.EI: 1,
		dimension.SN: 5,
		dimension.TF: 5,
		dimension.JP: 5,
	}[q.Dimension]
	if q.ReverseCoded {
		return 6 - adjusted
	}
	return adjusted
}

func answerAll(t *testing.T, o *Orchestrator) {
	t.Helper()
	for !o.IsComplete() {
		q, ok := o.Current()
		require.True(t, ok)
		require.NoError(t, o.Submit(answerFor(q)))
	}
}

func TestFullRun(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	assert.Len(t, f.orch.Questions(), 16)

	answerAll(t, f.orch)
	f.advance(5 * time.Minute)

	out, err := f.orch.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INTJ", out.Result.Type)
	assert.Equal(t, 100.0, out.Result.Confidence)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, "The Architect", out.Analysis.Title)
	assert.NoError(t, out.Balance)
	assert.NotEmpty(t, out.HistoryID)

	again, err := f.orch.Finish(ctx)
	require.NoError(t, err)
	assert.Same(t, out, again)

	hist, err := f.db.ResultRepo().ListResults(ctx, 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "INTJ", hist[0].Type)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(hist[0].Payload, &payload))
	assert.Equal(t, "INTJ", payload["type"])

	events, err := f.db.EventRepo().QuerySessionEvents(ctx, f.orch.Session().ID, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, store.ActionComplete, events[0].Action)
	assert.Equal(t, store.ActionStart, events[1].Action)

	assert.ErrorIs(t, f.orch.Submit(3), session.ErrAlreadyCompleted)

	loaded, err := f.sessions.Load(f.orch.Session().ID)
	require.NoError(t, err)
	assert.True(t, loaded.Completed)
	assert.Equal(t, "INTJ", loaded.Result.Type)
}

func TestSubmit_Sanitizes(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.orch.Start(t.Context(), questionbank.Short))

	q0, _ := f.orch.Current()
	require.NoError(t, f.orch.Submit("4 - Agree"))
	v, ok := f.orch.Answer(q0.ID)
	require.True(t, ok)
	assert.Equal(t, 4, v)

	q1, _ := f.orch.Current()
	require.NoError(t, f.orch.Submit(7.2))
	v, _ = f.orch.Answer(q1.ID)
	assert.Equal(t, 5, v)

	err := f.orch.Submit("maybe")
	var pe *validate.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, f.orch.Index())

	q2, _ := f.orch.Current()
	require.NoError(t, f.orch.Skip())
	v, _ = f.orch.Answer(q2.ID)
	assert.Equal(t, NeutralValue, v)
}

func TestSubmit_NoSession(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.orch.Submit(3), session.ErrNoActiveSession)
	_, err := f.orch.Finish(t.Context())
	assert.ErrorIs(t, err, session.ErrNoActiveSession)
}

func TestFinish_Incomplete(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.orch.Start(t.Context(), questionbank.Short))
	require.NoError(t, f.orch.Submit(2))

	_, err := f.orch.Finish(t.Context())
	var inc *validate.IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, 15, inc.Missing)
}

func TestStart_UnknownLength(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.orch.Start(t.Context(), "huge"), questionbank.ErrUnknownLength)
}

func TestBack(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))

	moved, err := f.orch.Back(ctx)
	require.NoError(t, err)
	assert.False(t, moved)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.orch.Submit(4))
	}
	third := f.orch.Questions()[2]

	moved, err = f.orch.Back(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 2, f.orch.Index())
	cur, _ := f.orch.Current()
	assert.Equal(t, third.ID, cur.ID)
	_, answered := f.orch.Answer(third.ID)
	assert.False(t, answered)

	events, err := f.db.EventRepo().QuerySessionEvents(ctx, f.orch.Session().ID, store.QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, store.ActionBack, events[0].Action)
	assert.Equal(t, third.ID, events[0].Detail)
}

func TestResume_RestoresOrderAndCursor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	for i := 0; i < 5; i++ {
		q, _ := f.orch.Current()
		require.NoError(t, f.orch.Submit(answerFor(q)))
	}
	order := f.orch.Questions()
	id := f.orch.Session().ID
	f.orch.Abandon(ctx)
	assert.False(t, f.orch.Active())
	f.advance(10 * time.Minute)

	list, err := f.orch.Resumable()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Answered)

	// A fresh orchestrator with a different seed.
	g := newFixture(t, nil)
	g.orch.opts.Sessions = session.NewStore(session.Config{Dir: f.dir}, logger.Nop(), session.WithClock(f.now))
	require.NoError(t, g.orch.Resume(ctx, id))
	assert.Equal(t, 5, g.orch.Index())
	assert.Equal(t, order, g.orch.Questions())
	cur, ok := g.orch.Current()
	require.True(t, ok)
	assert.Equal(t, order[5].ID, cur.ID)

	answerAll(t, g.orch)
	out, err := g.orch.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INTJ", out.Result.Type)
	assert.Equal(t, 16, out.Result.TotalResponses)
}

func TestResume_WithoutStoredOrder(t *testing.T) {
	f := newFixture(t, nil)
	catalog := f.orch.opts.Questions
	ei := catalog.ByDimension(dimension.EI)
	rec := f.sessions.Create("short", 16, nil)
	require.NoError(t, f.sessions.Submit(ei[0], 2))
	require.NoError(t, f.sessions.Submit(ei[1], 2))
	f.sessions.Detach()

	require.NoError(t, f.orch.Resume(t.Context(), rec.ID))
	qs := f.orch.Questions()
	require.Len(t, qs, 16)
	assert.Equal(t, ei[0].ID, qs[0].ID)
	assert.Equal(t, ei[1].ID, qs[1].ID)

	seen := map[string]bool{}
	perDim := map[dimension.Dimension]int{}
	for _, q := range qs {
		assert.False(t, seen[q.ID], "duplicate %s", q.ID)
		seen[q.ID] = true
		perDim[q.Dimension]++
	}
	for _, d := range dimension.All() {
		assert.Equal(t, 4, perDim[d], d)
	}
	assert.Equal(t, 2, f.orch.Index())
}

func TestResume_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.orch.Resume(t.Context(), "19990101"), session.ErrSessionNotFound)
}

func TestResume_Completed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	answerAll(t, f.orch)
	_, err := f.orch.Finish(ctx)
	require.NoError(t, err)
	id := f.orch.Session().ID
	f.orch.Abandon(ctx)

	require.NoError(t, f.orch.Resume(ctx, id))
	out, ok := f.orch.Result()
	require.True(t, ok)
	assert.Equal(t, "INTJ", out.Result.Type)
	_, ok = f.orch.Current()
	assert.False(t, ok)
}

func TestProgress(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.orch.Start(t.Context(), questionbank.Short))
	for i := 0; i < 4; i++ {
		require.NoError(t, f.orch.Submit(3))
	}
	f.advance(75 * time.Second)

	p := f.orch.Progress()
	assert.Equal(t, 4, p.Answered)
	assert.Equal(t, 12, p.Remaining)
	assert.InDelta(t, 25.0, p.Percentage, 1e-9)
	assert.Equal(t, "1:15", session.FormatElapsed(p.Elapsed))
	require.Len(t, p.Dimensions, 4)
	sum := 0
	for _, d := range p.Dimensions {
		assert.Equal(t, 4, d.Total)
		sum += d.Answered
	}
	assert.Equal(t, 4, sum)
}

func TestQuality_StraightLining(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.orch.Start(t.Context(), questionbank.Short))
	for i := 0; i < 12; i++ {
		require.NoError(t, f.orch.Submit(3))
	}
	rep := f.orch.Quality()
	assert.False(t, rep.Accepted)
	assert.Equal(t, validate.MsgStraightLine, rep.Message)
}

func TestExportAndReflect(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"headline": "Quiet strategist",
		"summary": "You plan far ahead and like ideas that hold together.",
		"growth_tips": ["Share plans earlier so others can help shape them."],
		"borderline_note": ""
	}`)})
	f := newFixture(t, insight.NewService(mock, insight.DefaultConfig()))
	ctx := t.Context()

	_, err := f.orch.Export(session.FormatJSON)
	assert.ErrorIs(t, err, ErrNotFinished)
	_, err = f.orch.Reflect(ctx)
	assert.ErrorIs(t, err, ErrNotFinished)

	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	answerAll(t, f.orch)
	_, err = f.orch.Finish(ctx)
	require.NoError(t, err)

	r, err := f.orch.Reflect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Quiet strategist", r.Headline)

	path, err := f.orch.Export(session.FormatText)
	require.NoError(t, err)
	assert.Equal(t, "persona_results_INTJ_20260401_080000.txt", filepath.Base(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Quiet strategist")
}

func TestReflect_Unavailable(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	answerAll(t, f.orch)
	_, err := f.orch.Finish(ctx)
	require.NoError(t, err)

	_, err = f.orch.Reflect(ctx)
	assert.ErrorIs(t, err, insight.ErrUnavailable)
}

func TestCleanup_RecordsEvent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "session_broken.json"), []byte("{"), 0o644))

	rep, err := f.orch.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Removed())

	events, err := f.db.EventRepo().QuerySessionEvents(ctx, "*", store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, store.ActionCleanup, events[0].Action)
}

func TestExportSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	q, _ := f.orch.Current()
	require.NoError(t, f.orch.Submit(answerFor(q)))
	id := f.orch.Session().ID

	path, err := f.orch.ExportSession(id, session.FormatText)
	require.NoError(t, err)
	assert.Equal(t, "persona_session_20260401_080000_20260401_080000.txt", filepath.Base(path))

	answerAll(t, f.orch)
	_, err = f.orch.Finish(ctx)
	require.NoError(t, err)
	f.orch.Abandon(ctx)

	path, err = f.orch.ExportSession(id, session.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "persona_results_INTJ_20260401_080000.json", filepath.Base(path))

	_, err = f.orch.ExportSession("nope", session.FormatJSON)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestResume_CursorPastAnswersIsClamped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := t.Context()
	retired := questionbank.Question{ID: "EI99-retired", Dimension: dimension.EI}
	rec := f.sessions.Create("short", 16, nil)
	require.NoError(t, f.sessions.Submit(retired, 2))
	path := f.sessions.Path()
	f.sessions.Detach()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	doc["current_question"] = 20
	raw, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	require.NoError(t, f.orch.Resume(ctx, rec.ID))
	qs := f.orch.Questions()
	require.Len(t, qs, 16)
	assert.Equal(t, retired.ID, qs[0].ID)
	perDim := map[dimension.Dimension]int{}
	for _, q := range qs {
		perDim[q.Dimension]++
	}
	assert.Equal(t, 4, perDim[dimension.EI])
	assert.Equal(t, 1, f.orch.Index())

	moved, err := f.orch.Back(ctx)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 0, f.orch.Index())
	cur, ok := f.orch.Current()
	require.True(t, ok)
	assert.Equal(t, retired.ID, cur.ID)
}

func TestReflector_LeavesDocumentUntilAttached(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"headline": "Quiet strategist",
		"summary": "You plan far ahead.",
		"growth_tips": ["Share plans earlier."],
		"borderline_note": ""
	}`)})
	f := newFixture(t, insight.NewService(mock, insight.DefaultConfig()))
	ctx := t.Context()
	require.NoError(t, f.orch.Start(ctx, questionbank.Short))
	answerAll(t, f.orch)
	out, err := f.orch.Finish(ctx)
	require.NoError(t, err)
	before := out.Document

	call, err := f.orch.Reflector()
	require.NoError(t, err)
	r, err := call(ctx)
	require.NoError(t, err)
	assert.Nil(t, before.Reflection)

	f.orch.AttachReflection(r)
	after, _ := f.orch.Result()
	assert.Same(t, r, after.Document.Reflection)
	assert.Nil(t, before.Reflection, "the earlier document must stay unchanged")
}
