package questionbank

import (
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/persona/internal/dimension"
)

// ErrUnknownLength is returned for a test length that has no configuration.
var ErrUnknownLength = errors.New("unknown test length")

// Length names a test configuration.
type Length string

const (
	Short  Length = "short"
	Medium Length = "medium"
	Long   Length = "long"
)

// LengthConfig controls how many questions a test draws and from which
// priority tiers.
type LengthConfig struct {
	Length                Length
	Name                  string
	QuestionsPerDimension int
	Priorities            []int
	EstimatedMinutes      int
}

// Total is the number of questions a full selection contains.
func (c LengthConfig) Total() int {
	return c.QuestionsPerDimension * len(dimension.All())
}

// Allows reports whether questions of the given priority are preferred.
func (c LengthConfig) Allows(priority int) bool {
	return slices.Contains(c.Priorities, priority)
}

var lengths = []LengthConfig{
	{Length: Short, Name: "Quick Assessment", QuestionsPerDimension: 4, Priorities: []int{1}, EstimatedMinutes: 5},
	{Length: Medium, Name: "Balanced Test", QuestionsPerDimension: 11, Priorities: []int{1, 2}, EstimatedMinutes: 12},
	{Length: Long, Name: "Comprehensive Analysis", QuestionsPerDimension: 22, Priorities: []int{1, 2, 3}, EstimatedMinutes: 25},
}

// Lengths returns every available configuration, shortest first.
func Lengths() []LengthConfig {
	out := make([]LengthConfig, len(lengths))
	copy(out, lengths)
	return out
}

// ConfigFor returns the configuration for l.
func ConfigFor(l Length) (LengthConfig, error) {
	for _, c := range lengths {
		if c.Length == l {
			return c, nil
		}
	}
	return LengthConfig{}, fmt.Errorf("%w: %q", ErrUnknownLength, l)
}
