// Package scoring turns Likert responses into per-dimension preferences and
// a four-letter type.
package scoring

import (
	"fmt"
	"strings"

	"github.com/abhisek/persona/internal/dimension"
)

// Band edges. A right-side percentage inside [BorderlineLow, BorderlineHigh]
// is borderline; the preferred side is decided at TieBreak.
const (
	BorderlineLow  = 48.0
	BorderlineHigh = 52.0
	TieBreak       = 50.0
	Neutral        = 50.0

	// Unscored is the preference code for a dimension with no answers.
	Unscored = "X"
)

// Confidence tiers.
const (
	LevelStrong   = "Strong"
	LevelModerate = "Moderate"
	LevelLow      = "Low"
)

// DimensionScore is the derived result for one dimension.
type DimensionScore struct {
	Dimension      dimension.Dimension `json:"dimension"`
	Name           string              `json:"name"`
	LeftLabel      string              `json:"left_label"`
	RightLabel     string              `json:"right_label"`
	LeftScore      float64             `json:"left_score"`
	RightScore     float64             `json:"right_score"`
	Preference     string              `json:"preference"`
	PreferredLabel string              `json:"preferred_label"`
	Strength       float64             `json:"strength"`
	IsBorderline   bool                `json:"is_borderline"`
	ResponseCount  int                 `json:"response_count"`
}

// BorderlineDimension records a near-tied dimension.
type BorderlineDimension struct {
	Dimension dimension.Dimension `json:"dimension"`
	Name      string              `json:"name"`
	Scores    string              `json:"scores"`
}

// TypeResult is the outcome of a whole test.
type TypeResult struct {
	Type            string                `json:"type"`
	Confidence      float64               `json:"confidence"`
	ConfidenceLevel string                `json:"confidence_level"`
	Borderline      []BorderlineDimension `json:"borderline_dimensions"`
	SecondaryType   string                `json:"secondary_type,omitempty"`
	Dimensions      []DimensionScore      `json:"dimension_scores"`
	TotalResponses  int                   `json:"total_responses"`
}

// Adjusted returns the value used for aggregation: reverse-coded answers
// are mirrored around the scale midpoint.
func Adjusted(value int, reverse bool) int {
	if reverse {
		return 6 - value
	}
	return value
}

// Score computes a dimension's result from already adjusted values.
func Score(d dimension.Dimension, adjusted []int) DimensionScore {
	info := d.Info()
	s := DimensionScore{
		Dimension:     d,
		Name:          info.Name,
		LeftLabel:     info.Left.Label,
		RightLabel:    info.Right.Label,
		ResponseCount: len(adjusted),
	}

	if len(adjusted) == 0 {
		s.LeftScore, s.RightScore = Neutral, Neutral
		s.Preference = Unscored
		s.Strength = Neutral
		s.IsBorderline = true
		return s
	}

	sum := 0
	for _, v := range adjusted {
		sum += v
	}
	n := len(adjusted)
	lo, hi := n*1, n*5
	right := float64(sum-lo) / float64(hi-lo) * 100
	left := 100 - right

	s.RightScore, s.LeftScore = right, left
	switch {
	case right > BorderlineHigh:
		s.Preference, s.PreferredLabel, s.Strength = info.Right.Code, info.Right.Label, right
	case right < BorderlineLow:
		s.Preference, s.PreferredLabel, s.Strength = info.Left.Code, info.Left.Label, left
	default:
		if right >= TieBreak {
			s.Preference, s.PreferredLabel = info.Right.Code, info.Right.Label
		} else {
			s.Preference, s.PreferredLabel = info.Left.Code, info.Left.Label
		}
		s.Strength = Neutral
	}
	s.IsBorderline = right >= BorderlineLow && right <= BorderlineHigh
	return s
}

// Classify combines four dimension scores, given in dimension.All() order,
// into a TypeResult.
func Classify(scores []DimensionScore, total int) TypeResult {
	var (
		code      strings.Builder
		secondary strings.Builder
		sum       float64
	)
	res := TypeResult{
		Dimensions:     scores,
		TotalResponses: total,
		Borderline:     []BorderlineDimension{},
	}

	for _, s := range scores {
		code.WriteString(s.Preference)
		sum += s.Strength
		if s.IsBorderline {
			res.Borderline = append(res.Borderline, BorderlineDimension{
				Dimension: s.Dimension,
				Name:      s.Name,
				Scores: fmt.Sprintf("%s (%.1f%%) vs %s (%.1f%%)",
					s.LeftLabel, s.LeftScore, s.RightLabel, s.RightScore),
			})
			secondary.WriteString(s.Dimension.Opposite(s.Preference))
		} else {
			secondary.WriteString(s.Preference)
		}
	}

	res.Type = code.String()
	if len(scores) > 0 {
		res.Confidence = sum / float64(len(scores))
	}
	res.ConfidenceLevel = Level(res.Confidence)
	if sec := secondary.String(); sec != res.Type {
		res.SecondaryType = sec
	}
	return res
}

// Level maps an overall confidence to its tier.
func Level(confidence float64) string {
	switch {
	case confidence > 70:
		return LevelStrong
	case confidence > 60:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Insight describes how pronounced a dimension preference is. Dimensions
// that are neither clear nor borderline return "".
func (s DimensionScore) Insight() string {
	switch {
	case s.Strength > 70:
		return fmt.Sprintf("Strong %s preference (%.1f%%)", s.PreferredLabel, s.Strength)
	case s.Strength > 60:
		return fmt.Sprintf("Moderate %s preference (%.1f%%)", s.PreferredLabel, s.Strength)
	case s.IsBorderline:
		return fmt.Sprintf("Balanced between %s and %s", s.LeftLabel, s.RightLabel)
	}
	return ""
}

// Insights collects the non-empty insight lines of scores in order.
func Insights(scores []DimensionScore) []string {
	var out []string
	for _, s := range scores {
		if line := s.Insight(); line != "" {
			out = append(out, line)
		}
	}
	return out
}
