package validate

import (
	"errors"
	"fmt"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/ledger"
)

// ErrDimensionImbalance is returned when one dimension has more than twice
// the answers of another.
var ErrDimensionImbalance = errors.New("responses are unevenly distributed across dimensions")

// IncompleteError reports a response set short of the expected total.
type IncompleteError struct {
	Missing int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("Test incomplete: %d questions remaining", e.Missing)
}

// OverCountError reports more responses than the test holds.
type OverCountError struct {
	Expected int
	Got      int
}

func (e *OverCountError) Error() string {
	return fmt.Sprintf("Too many responses: expected %d, got %d", e.Expected, e.Got)
}

// CheckCompletion compares a response count to the expected total.
func CheckCompletion(count, expected int) error {
	switch {
	case count < expected:
		return &IncompleteError{Missing: expected - count}
	case count > expected:
		return &OverCountError{Expected: expected, Got: count}
	}
	return nil
}

// CheckBalance flags a tally whose largest dimension count exceeds twice
// its smallest. Dimensions missing from tally count as zero.
func CheckBalance(tally map[dimension.Dimension]int) error {
	lo, hi := -1, 0
	for _, d := range dimension.All() {
		n := tally[d]
		if lo < 0 || n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	if hi > 2*lo {
		return fmt.Errorf("%w: largest %d, smallest %d", ErrDimensionImbalance, hi, lo)
	}
	return nil
}

// ValidateCompletion runs the count check and then the balance check.
func ValidateCompletion(responses []ledger.Response, expected int) error {
	if err := CheckCompletion(len(responses), expected); err != nil {
		return err
	}
	tally := make(map[dimension.Dimension]int, 4)
	for _, r := range responses {
		tally[r.Dimension]++
	}
	return CheckBalance(tally)
}
