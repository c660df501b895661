// Package validate turns raw answers into scale values and screens finished
// response sets for low-quality patterns.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinValue = 1
	MaxValue = 5
	Neutral  = 3
)

// ParseError reports raw input that cannot be read as a number.
type ParseError struct {
	Input any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot read %v as a response value", e.Input)
}

// RangeError reports a value that is not an integer in [1,5].
type RangeError struct {
	Value any
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("response value %v is not an integer between %d and %d", e.Value, MinValue, MaxValue)
}

// Sanitize converts raw input to a scale value. Floats are rounded half
// away from zero; strings are parsed as integers, falling back to a leading
// digit ("1 - Strongly Agree" reads as 1). The result is clamped into
// [MinValue, MaxValue].
func Sanitize(raw any) (int, error) {
	var v int
	switch x := raw.(type) {
	case int:
		v = x
	case int8:
		v = int(x)
	case int16:
		v = int(x)
	case int32:
		v = int(x)
	case int64:
		v = clampInt64(x)
	case uint:
		v = int(min(x, MaxValue))
	case uint8:
		v = int(x)
	case uint16:
		v = int(x)
	case uint32:
		v = int(x)
	case uint64:
		v = int(min(x, MaxValue))
	case float32:
		f, err := roundFloat(float64(x), raw)
		if err != nil {
			return 0, err
		}
		v = f
	case float64:
		f, err := roundFloat(x, raw)
		if err != nil {
			return 0, err
		}
		v = f
	case string:
		s, err := parseString(x)
		if err != nil {
			return 0, err
		}
		v = s
	default:
		return 0, &ParseError{Input: raw}
	}
	return clamp(v), nil
}

// Strict rejects anything that is not already an integer in range.
func Strict(v any) error {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	default:
		return &RangeError{Value: v}
	}
	if n < MinValue || n > MaxValue {
		return &RangeError{Value: v}
	}
	return nil
}

func parseString(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, nil
	}
	// Only the untrimmed input's first character counts, so " 1x" is rejected.
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		return int(s[0] - '0'), nil
	}
	return 0, &ParseError{Input: s}
}

func roundFloat(f float64, raw any) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ParseError{Input: raw}
	}
	r := math.Round(f)
	switch {
	case r < MinValue:
		return MinValue, nil
	case r > MaxValue:
		return MaxValue, nil
	}
	return int(r), nil
}

func clampInt64(n int64) int {
	switch {
	case n < MinValue:
		return MinValue
	case n > MaxValue:
		return MaxValue
	}
	return int(n)
}

func clamp(v int) int {
	return max(MinValue, min(MaxValue, v))
}
