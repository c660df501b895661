package scoring

import (
	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/ledger"
)

type answer struct {
	dim     dimension.Dimension
	value   int
	reverse bool
}

// Engine accumulates answers and derives scores on demand. Scores are
// cached until the next mutation.
type Engine struct {
	answers map[string]answer
	cache   map[dimension.Dimension]DimensionScore
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{answers: make(map[string]answer)}
}

// AddResponse records an answer. A second answer for the same question ID
// replaces the first.
func (e *Engine) AddResponse(questionID string, d dimension.Dimension, value int, reverse bool) {
	if e.answers == nil {
		e.answers = make(map[string]answer)
	}
	e.answers[questionID] = answer{dim: d, value: value, reverse: reverse}
	e.cache = nil
}

// Reset clears all answers and cached scores.
func (e *Engine) Reset() {
	e.answers = make(map[string]answer)
	e.cache = nil
}

// Sync replaces the engine's state with the contents of v.
func (e *Engine) Sync(v ledger.View) {
	e.Reset()
	for _, r := range v.Responses() {
		e.AddResponse(r.QuestionID, r.Dimension, r.Value, r.ReverseCoded)
	}
}

// Len returns the number of distinct answered questions.
func (e *Engine) Len() int { return len(e.answers) }

// DimensionScore returns the score for one dimension.
func (e *Engine) DimensionScore(d dimension.Dimension) DimensionScore {
	e.compute()
	return e.cache[d]
}

// Scores returns all four dimension scores in dimension.All() order.
func (e *Engine) Scores() []DimensionScore {
	out := make([]DimensionScore, 0, 4)
	for _, d := range dimension.All() {
		out = append(out, e.DimensionScore(d))
	}
	return out
}

// Result classifies the current answers.
func (e *Engine) Result() TypeResult {
	return Classify(e.Scores(), len(e.answers))
}

func (e *Engine) compute() {
	if e.cache != nil {
		return
	}
	adjusted := make(map[dimension.Dimension][]int, 4)
	for _, a := range e.answers {
		adjusted[a.dim] = append(adjusted[a.dim], Adjusted(a.value, a.reverse))
	}
	e.cache = make(map[dimension.Dimension]DimensionScore, 4)
	for _, d := range dimension.All() {
		e.cache[d] = Score(d, adjusted[d])
	}
}
