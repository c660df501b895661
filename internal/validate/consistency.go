package validate

import "fmt"

// Screening messages.
const (
	MsgNoResponses  = "No responses provided"
	MsgTooFew       = "Too few responses to check consistency"
	MsgStraightLine = "All responses are identical - possible straight-lining"
	MsgAlternating  = "Alternating pattern detected - possible random responses"
	MsgExtreme      = "Too many extreme responses - consider more nuanced answers"
	MsgValid        = "Valid response pattern"
)

const (
	minScreened    = 10
	extremeCeiling = 0.9
)

// Report is the outcome of consistency screening.
type Report struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// Warning converts a rejected report into an advisory warning; accepted
// reports yield nil.
func (r Report) Warning() *QualityWarning {
	if r.Accepted {
		return nil
	}
	return &QualityWarning{Reason: r.Message}
}

// QualityWarning is an advisory result of screening. It never blocks
// completion.
type QualityWarning struct {
	Reason string
}

func (w *QualityWarning) Error() string {
	return fmt.Sprintf("response quality: %s", w.Reason)
}

// CheckConsistency screens a completed response set. Checks run in order:
// empty, too few to judge, straight-lining, period-2 alternation of
// exactly two values, and a share of extreme answers above 90%.
func CheckConsistency(values []int) Report {
	if len(values) == 0 {
		return Report{Accepted: false, Message: MsgNoResponses}
	}
	if len(values) < minScreened {
		return Report{Accepted: true, Message: MsgTooFew}
	}
	if allSame(values) {
		return Report{Accepted: false, Message: MsgStraightLine}
	}
	if alternating(values) {
		return Report{Accepted: false, Message: MsgAlternating}
	}

	extremes := 0
	for _, v := range values {
		if v == MinValue || v == MaxValue {
			extremes++
		}
	}
	if float64(extremes)/float64(len(values)) > extremeCeiling {
		return Report{Accepted: false, Message: MsgExtreme}
	}

	return Report{Accepted: true, Message: MsgValid}
}

func allSame(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func alternating(values []int) bool {
	if len(values) < 4 {
		return false
	}
	distinct := map[int]bool{}
	for _, v := range values {
		distinct[v] = true
	}
	if len(distinct) != 2 {
		return false
	}
	for i := 2; i < len(values); i++ {
		if values[i] != values[i-2] {
			return false
		}
	}
	return true
}
