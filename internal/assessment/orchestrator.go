// Package assessment drives one test from question selection to the final
// result. It is the only API the presentation layer talks to.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/insight"
	"github.com/abhisek/persona/internal/logger"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/report"
	"github.com/abhisek/persona/internal/scoring"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/store"
	"github.com/abhisek/persona/internal/typedesc"
	"github.com/abhisek/persona/internal/validate"
)

var (
	// ErrNoQuestions is returned when selection yields an empty test.
	ErrNoQuestions = errors.New("no questions available for this test length")
	// ErrNoCurrentQuestion is returned when answering past the last question.
	ErrNoCurrentQuestion = errors.New("no question left to answer")
	// ErrNotFinished is returned by operations that need a finished test.
	ErrNotFinished = errors.New("assessment not finished")
)

// NeutralValue is recorded for a skipped question.
const NeutralValue = 3

// Options wires an Orchestrator. Questions, Types and Sessions are
// required; the rest are optional.
type Options struct {
	Questions *questionbank.Catalog
	Types     *typedesc.Catalog
	Sessions  *session.Store

	Events  store.EventRepo
	Results store.ResultRepo
	Insight *insight.Service

	ExportDir string
	Rand      *rand.Rand
	Log       *logger.Logger
	Now       func() time.Time
}

// Outcome is everything produced when a test finishes.
type Outcome struct {
	Result     scoring.TypeResult
	Analysis   *typedesc.Analysis
	Quality    validate.Report
	Balance    error
	Document   *report.Document
	HistoryID  string
	Reflection *insight.Reflection
}

// Orchestrator runs a single assessment at a time.
type Orchestrator struct {
	opts     Options
	log      *logger.Logger
	selector *questionbank.Selector
	engine   *scoring.Engine

	length    questionbank.LengthConfig
	questions []questionbank.Question
	outcome   *Outcome
}

// New creates an orchestrator, filling unset options with defaults.
func New(opts Options) *Orchestrator {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		opts:     opts,
		log:      opts.Log.With("component", "assessment"),
		selector: questionbank.NewSelector(opts.Questions, opts.Rand),
		engine:   scoring.NewEngine(),
	}
}

// Start selects questions for length and opens a new session.
func (o *Orchestrator) Start(ctx context.Context, length questionbank.Length) error {
	cfg, err := questionbank.ConfigFor(length)
	if err != nil {
		return err
	}
	qs := o.selector.Select(cfg)
	if len(qs) == 0 {
		return ErrNoQuestions
	}
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}

	o.reset(cfg, qs)
	rec := o.opts.Sessions.Create(string(length), len(qs), ids)
	if len(qs) < cfg.Total() {
		o.log.Warn("catalog too small for full test", "length", length, "selected", len(qs), "wanted", cfg.Total())
	}
	o.event(ctx, store.ActionStart, rec, "")
	return nil
}

// Resume reopens a stored session by full or partial ID. A completed
// session is reopened read-only with its stored result.
func (o *Orchestrator) Resume(ctx context.Context, id string) error {
	rec, err := o.opts.Sessions.Resume(id)
	if err != nil {
		return err
	}
	cfg, err := questionbank.ConfigFor(questionbank.Length(rec.TestLength))
	if err != nil {
		o.opts.Sessions.Detach()
		return fmt.Errorf("session %s: %w", rec.ID, err)
	}
	o.reset(cfg, o.rebuild(rec, cfg))
	o.opts.Sessions.ClampCursor(len(o.questions))
	o.engine.Sync(rec.Responses)

	if rec.Completed && rec.Result != nil {
		out, err := o.buildOutcome(rec, *rec.Result)
		if err != nil {
			return err
		}
		o.outcome = out
	}
	o.event(ctx, store.ActionResume, rec, "")
	return nil
}

// rebuild restores the presented order. The stored identifier list is used
// when every ID still resolves; otherwise answered questions keep their
// ledger order and the tail is selected afresh.
func (o *Orchestrator) rebuild(rec *session.Record, cfg questionbank.LengthConfig) []questionbank.Question {
	if len(rec.QuestionIDs) > 0 {
		qs := make([]questionbank.Question, 0, len(rec.QuestionIDs))
		for _, id := range rec.QuestionIDs {
			q, ok := o.opts.Questions.Get(id)
			if !ok {
				break
			}
			qs = append(qs, q)
		}
		if len(qs) == len(rec.QuestionIDs) {
			return qs
		}
		o.log.Warn("stored question order no longer resolves", "session_id", rec.ID)
	}

	qs := make([]questionbank.Question, 0, rec.TotalQuestions)
	for _, r := range rec.Responses.Responses() {
		q, ok := o.opts.Questions.Get(r.QuestionID)
		if !ok {
			q = questionbank.Question{
				ID:           r.QuestionID,
				Dimension:    r.Dimension,
				ReverseCoded: r.ReverseCoded,
				Text:         "(question no longer available)",
				Options:      questionbank.DefaultOptions(),
			}
		}
		qs = append(qs, q)
	}
	return append(qs, o.selector.SelectRemaining(cfg, qs)...)
}

func (o *Orchestrator) reset(cfg questionbank.LengthConfig, qs []questionbank.Question) {
	o.length = cfg
	o.questions = qs
	o.outcome = nil
	o.engine.Reset()
}

// Active reports whether a session is attached.
func (o *Orchestrator) Active() bool {
	return o.opts.Sessions.Current() != nil
}

// Session returns the attached session record, or nil.
func (o *Orchestrator) Session() *session.Record {
	return o.opts.Sessions.Current()
}

// PersistError returns the last failed session write, if the most recent
// write failed.
func (o *Orchestrator) PersistError() error {
	return o.opts.Sessions.LastPersistError()
}

// Length returns the configuration of the running test.
func (o *Orchestrator) Length() questionbank.LengthConfig { return o.length }

// Questions returns the presented question order.
func (o *Orchestrator) Questions() []questionbank.Question {
	return append([]questionbank.Question(nil), o.questions...)
}

// Index is the zero-based position of the current question.
func (o *Orchestrator) Index() int {
	if rec := o.Session(); rec != nil {
		return rec.CurrentQuestion
	}
	return 0
}

// Current returns the question awaiting an answer.
func (o *Orchestrator) Current() (questionbank.Question, bool) {
	rec := o.Session()
	if rec == nil || rec.Completed || rec.CurrentQuestion >= len(o.questions) {
		return questionbank.Question{}, false
	}
	return o.questions[rec.CurrentQuestion], true
}

// Answer returns the recorded value for a question, if any.
func (o *Orchestrator) Answer(id string) (int, bool) {
	rec := o.Session()
	if rec == nil {
		return 0, false
	}
	r, ok := rec.Responses.Get(id)
	return r.Value, ok
}

// Submit sanitizes raw, checks it and records it for the current question.
func (o *Orchestrator) Submit(raw any) error {
	if !o.Active() {
		return session.ErrNoActiveSession
	}
	q, ok := o.Current()
	if !ok {
		if o.Session().Completed {
			return session.ErrAlreadyCompleted
		}
		return ErrNoCurrentQuestion
	}
	v, err := validate.Sanitize(raw)
	if err != nil {
		return err
	}
	if err := validate.Strict(v); err != nil {
		return err
	}
	return o.opts.Sessions.Submit(q, v)
}

// Skip records the neutral value for the current question.
func (o *Orchestrator) Skip() error {
	return o.Submit(NeutralValue)
}

// Back returns to the previous question, discarding its answer.
func (o *Orchestrator) Back(ctx context.Context) (bool, error) {
	moved, err := o.opts.Sessions.GoBack()
	if err != nil || !moved {
		return moved, err
	}
	rec := o.Session()
	var detail string
	if rec.CurrentQuestion < len(o.questions) {
		detail = o.questions[rec.CurrentQuestion].ID
	}
	o.event(ctx, store.ActionBack, rec, detail)
	return true, nil
}

// IsComplete reports whether every presented question has an answer.
func (o *Orchestrator) IsComplete() bool {
	rec := o.Session()
	return rec != nil && len(o.questions) > 0 && rec.CurrentQuestion >= len(o.questions)
}

// Scores returns the running per-dimension scores.
func (o *Orchestrator) Scores() []scoring.DimensionScore {
	if rec := o.Session(); rec != nil {
		o.engine.Sync(rec.Responses)
	}
	return o.engine.Scores()
}

// Quality screens the answers given so far.
func (o *Orchestrator) Quality() validate.Report {
	rec := o.Session()
	if rec == nil {
		return validate.CheckConsistency(nil)
	}
	return validate.CheckConsistency(rec.Responses.Values())
}

// Result returns the outcome of a finished test.
func (o *Orchestrator) Result() (*Outcome, bool) {
	return o.outcome, o.outcome != nil
}

// Finish scores the completed test, stores the result in the session and
// the history, and returns the outcome.
func (o *Orchestrator) Finish(ctx context.Context) (*Outcome, error) {
	rec := o.Session()
	if rec == nil {
		return nil, session.ErrNoActiveSession
	}
	if rec.Completed && o.outcome != nil {
		return o.outcome, nil
	}
	if err := validate.CheckCompletion(rec.Responses.Len(), len(o.questions)); err != nil {
		return nil, err
	}

	o.engine.Sync(rec.Responses)
	result := o.engine.Result()
	if err := o.opts.Sessions.MarkComplete(result); err != nil {
		return nil, err
	}
	out, err := o.buildOutcome(rec, result)
	if err != nil {
		return nil, err
	}
	if out.Balance != nil {
		o.log.Warn("unbalanced responses", "session_id", rec.ID, "error", out.Balance)
	}
	out.HistoryID = o.saveHistory(ctx, rec, out)
	o.outcome = out
	o.event(ctx, store.ActionComplete, rec, result.Type)
	return out, nil
}

func (o *Orchestrator) buildOutcome(rec *session.Record, result scoring.TypeResult) (*Outcome, error) {
	out := &Outcome{
		Result:  result,
		Quality: validate.CheckConsistency(rec.Responses.Values()),
		Balance: validate.CheckBalance(rec.Responses.Tally()),
	}
	if a, err := o.opts.Types.Analyze(result.Type, result.Dimensions); err == nil {
		out.Analysis = &a
	} else if !errors.Is(err, typedesc.ErrUnknownType) {
		return nil, err
	}
	doc, err := report.FromRecord(rec, out.Analysis)
	if err != nil {
		return nil, err
	}
	out.Document = doc
	return out, nil
}

func (o *Orchestrator) saveHistory(ctx context.Context, rec *session.Record, out *Outcome) string {
	if o.opts.Results == nil {
		return ""
	}
	payload, err := out.Document.JSON()
	if err != nil {
		o.log.Warn("encode result for history", "session_id", rec.ID, "error", err)
		return ""
	}
	hr := &store.ResultRecord{
		SessionID:       rec.ID,
		Type:            out.Result.Type,
		SecondaryType:   out.Result.SecondaryType,
		Confidence:      out.Result.Confidence,
		ConfidenceLevel: out.Result.ConfidenceLevel,
		TestLength:      rec.TestLength,
		TotalResponses:  out.Result.TotalResponses,
		CompletedAt:     out.Document.Metadata.CompletedAt,
		Payload:         payload,
	}
	if err := o.opts.Results.SaveResult(ctx, hr); err != nil {
		o.log.Warn("save result history", "session_id", rec.ID, "error", err)
		return ""
	}
	return hr.ID
}

// CanReflect reports whether reflections can be generated.
func (o *Orchestrator) CanReflect() bool {
	return o.opts.Insight.Available()
}

// Reflector returns a call that asks the insight service for commentary on
// the finished result. The call holds its own copy of the input and never
// touches the orchestrator, so it may run off the UI goroutine. Attach the
// reflection it returns with AttachReflection.
func (o *Orchestrator) Reflector() (func(context.Context) (*insight.Reflection, error), error) {
	if o.outcome == nil {
		return nil, ErrNotFinished
	}
	svc := o.opts.Insight
	if !svc.Available() {
		return nil, insight.ErrUnavailable
	}
	in := insight.Input{Result: o.outcome.Result}
	if o.outcome.Analysis != nil {
		in.Analysis = *o.outcome.Analysis
	}
	return func(ctx context.Context) (*insight.Reflection, error) {
		return svc.Reflect(ctx, in)
	}, nil
}

// Reflect runs the Reflector call and attaches its reflection.
func (o *Orchestrator) Reflect(ctx context.Context) (*insight.Reflection, error) {
	call, err := o.Reflector()
	if err != nil {
		return nil, err
	}
	r, err := call(ctx)
	if err != nil {
		return nil, err
	}
	o.AttachReflection(r)
	return r, nil
}

// AttachReflection adds r to the outcome. The document is replaced rather
// than modified, so copies handed to running exports stay unchanged.
func (o *Orchestrator) AttachReflection(r *insight.Reflection) {
	if o.outcome == nil || r == nil {
		return
	}
	doc := *o.outcome.Document
	doc.Reflection = r
	o.outcome.Document = &doc
	o.outcome.Reflection = r
}

// Export writes the finished result document into the export directory.
func (o *Orchestrator) Export(f session.Format) (string, error) {
	if o.outcome == nil {
		return "", ErrNotFinished
	}
	return o.ExportDocument(o.outcome.Document, f)
}

// ExportDocument writes doc into the export directory. It reads only fixed
// configuration and is safe to call off the UI goroutine.
func (o *Orchestrator) ExportDocument(doc *report.Document, f session.Format) (string, error) {
	return report.Write(doc, f, o.opts.ExportDir, o.opts.Now())
}

// ExportSession writes a stored session without resuming it. A completed
// session is exported as its result document, an unfinished one as a
// session snapshot.
func (o *Orchestrator) ExportSession(id string, f session.Format) (string, error) {
	rec, err := o.opts.Sessions.Load(id)
	if err != nil {
		return "", err
	}
	if rec.Result == nil {
		return session.Export(rec, f, o.opts.ExportDir, o.opts.Now())
	}
	out, err := o.buildOutcome(rec, *rec.Result)
	if err != nil {
		return "", err
	}
	return report.Write(out.Document, f, o.opts.ExportDir, o.opts.Now())
}

// Abandon detaches an unfinished session, leaving its file for a later
// resume.
func (o *Orchestrator) Abandon(ctx context.Context) {
	rec := o.Session()
	if rec == nil {
		return
	}
	if !rec.Completed {
		o.event(ctx, store.ActionAbandon, rec, "")
	}
	o.opts.Sessions.Detach()
	o.reset(questionbank.LengthConfig{}, nil)
}

// Resumable lists sessions that can still be resumed.
func (o *Orchestrator) Resumable() ([]session.Summary, error) {
	return o.opts.Sessions.Resumable()
}

// Cleanup removes expired and corrupt session files.
func (o *Orchestrator) Cleanup(ctx context.Context) (session.CleanupReport, error) {
	rep, err := o.opts.Sessions.Cleanup()
	if err != nil {
		return rep, err
	}
	if rep.Removed() > 0 && o.opts.Events != nil {
		data := store.SessionEventData{
			SessionID: "*",
			Action:    store.ActionCleanup,
			Answered:  rep.Removed(),
			Detail:    fmt.Sprintf("%d expired, %d corrupt, %d temp", len(rep.Expired), len(rep.Corrupt), len(rep.Temp)),
		}
		if err := o.opts.Events.AppendSessionEvent(ctx, data); err != nil {
			o.log.Warn("record cleanup event", "error", err)
		}
	}
	return rep, nil
}

func (o *Orchestrator) event(ctx context.Context, action string, rec *session.Record, detail string) {
	if o.opts.Events == nil || rec == nil {
		return
	}
	data := store.SessionEventData{
		SessionID: rec.ID,
		Action:    action,
		Answered:  rec.CurrentQuestion,
		Total:     rec.TotalQuestions,
		Detail:    detail,
	}
	if err := o.opts.Events.AppendSessionEvent(ctx, data); err != nil {
		o.log.Warn("record session event", "action", action, "session_id", rec.ID, "error", err)
	}
}

// DimensionProgress counts answered and presented questions of one
// dimension.
type DimensionProgress struct {
	Dimension dimension.Dimension
	Answered  int
	Total     int
}

// Progress extends the session progress with per-dimension counts.
type Progress struct {
	session.Progress
	Dimensions []DimensionProgress
}

// Progress reports how far the running test has got.
func (o *Orchestrator) Progress() Progress {
	rec := o.Session()
	if rec == nil {
		return Progress{}
	}
	p := Progress{Progress: session.ProgressAt(rec, o.opts.Now())}
	totals := make(map[dimension.Dimension]int, 4)
	for _, q := range o.questions {
		totals[q.Dimension]++
	}
	answered := rec.Responses.Tally()
	for _, d := range dimension.All() {
		p.Dimensions = append(p.Dimensions, DimensionProgress{Dimension: d, Answered: answered[d], Total: totals[d]})
	}
	return p
}
