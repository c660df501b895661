package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/ledger"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int in range", 4, 4},
		{"negative int", -5, 1},
		{"large int", 100, 5},
		{"int64", int64(2), 2},
		{"uint8", uint8(9), 5},
		{"float rounds up", 2.7, 3},
		{"float rounds down", 3.2, 3},
		{"float half", 1.5, 2},
		{"float32", float32(4.4), 4},
		{"numeric string", "4", 4},
		{"padded string", "  2 ", 2},
		{"keycap emoji label", "1️⃣ Strongly Agree", 1},
		{"leading digit text", "5 - Strongly Agree", 5},
		{"decimal string uses first digit", "2.7", 2},
		{"negative string clamps", "-3", 1},
		{"large string clamps", "42", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_ParseErrors(t *testing.T) {
	for _, in := range []any{"abc", "", "   ", " 1x", math.NaN(), math.Inf(1), true, []int{1}, nil} {
		_, err := Sanitize(in)
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "Sanitize(%v) error = %v, want ParseError", in, err)
	}
}

func TestStrict(t *testing.T) {
	for _, v := range []any{1, 3, 5, int64(2), uint8(4)} {
		assert.NoError(t, Strict(v), "Strict(%v)", v)
	}
	for _, v := range []any{0, 6, -1, 3.0, "3", nil} {
		var re *RangeError
		assert.True(t, errors.As(Strict(v), &re), "Strict(%v) should be a RangeError", v)
	}
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCheckConsistency(t *testing.T) {
	tests := []struct {
		name     string
		values   []int
		accepted bool
		message  string
	}{
		{"empty", nil, false, MsgNoResponses},
		{"too few identical", repeat(3, 9), true, MsgTooFew},
		{"straight-lining", repeat(3, 16), false, MsgStraightLine},
		{"alternating", []int{2, 4, 2, 4, 2, 4, 2, 4, 2, 4, 2, 4}, false, MsgAlternating},
		{"alternating extremes reports alternation first", []int{1, 5, 1, 5, 1, 5, 1, 5, 1, 5}, false, MsgAlternating},
		{"extreme", []int{1, 5, 5, 1, 1, 5, 5, 5, 1, 1, 5}, false, MsgExtreme},
		{"exactly ninety percent extreme passes", []int{1, 5, 5, 1, 1, 5, 5, 5, 1, 3}, true, MsgValid},
		{"three-value cycle", []int{1, 2, 3, 1, 2, 3, 1, 2, 3, 1, 2, 3}, true, MsgValid},
		{"varied", []int{4, 2, 3, 5, 4, 1, 2, 3, 4, 4, 2, 5}, true, MsgValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckConsistency(tt.values)
			assert.Equal(t, tt.accepted, r.Accepted)
			assert.Equal(t, tt.message, r.Message)
			if tt.accepted {
				assert.Nil(t, r.Warning())
			} else {
				require.NotNil(t, r.Warning())
				assert.Equal(t, tt.message, r.Warning().Reason)
			}
		})
	}
}

func TestCheckCompletion(t *testing.T) {
	assert.NoError(t, CheckCompletion(16, 16))

	err := CheckCompletion(12, 16)
	var inc *IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, 4, inc.Missing)
	assert.Equal(t, "Test incomplete: 4 questions remaining", err.Error())

	err = CheckCompletion(18, 16)
	var over *OverCountError
	require.True(t, errors.As(err, &over))
	assert.Equal(t, "Too many responses: expected 16, got 18", err.Error())
}

func TestCheckBalance(t *testing.T) {
	balanced := map[dimension.Dimension]int{dimension.EI: 4, dimension.SN: 4, dimension.TF: 3, dimension.JP: 6}
	assert.NoError(t, CheckBalance(balanced))

	skewed := map[dimension.Dimension]int{dimension.EI: 4, dimension.SN: 4, dimension.TF: 3, dimension.JP: 7}
	assert.ErrorIs(t, CheckBalance(skewed), ErrDimensionImbalance)

	missing := map[dimension.Dimension]int{dimension.EI: 2, dimension.SN: 2, dimension.TF: 2}
	assert.ErrorIs(t, CheckBalance(missing), ErrDimensionImbalance)

	assert.NoError(t, CheckBalance(nil))
}

func TestValidateCompletion(t *testing.T) {
	var responses []ledger.Response
	for _, d := range dimension.All() {
		for i := 0; i < 4; i++ {
			responses = append(responses, ledger.Response{QuestionID: string(d) + string(rune('a'+i)), Dimension: d, Value: 3})
		}
	}
	assert.NoError(t, ValidateCompletion(responses, 16))

	var inc *IncompleteError
	assert.True(t, errors.As(ValidateCompletion(responses[:10], 16), &inc))
}
