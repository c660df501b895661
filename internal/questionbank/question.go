package questionbank

import "github.com/abhisek/persona/internal/dimension"

// Option is one answer choice on the 1-5 scale.
type Option struct {
	Value int    `yaml:"value" json:"value"`
	Text  string `yaml:"text" json:"text"`
}

// Question is an immutable catalog item.
type Question struct {
	ID           string              `yaml:"id" json:"id"`
	Dimension    dimension.Dimension `yaml:"dimension" json:"dimension"`
	Priority     int                 `yaml:"priority" json:"priority"`
	Text         string              `yaml:"text" json:"text"`
	Options      []Option            `yaml:"options,omitempty" json:"options"`
	ReverseCoded bool                `yaml:"reverse_coded" json:"reverse_coded"`
}

// DefaultOptions returns the standard agreement scale used when a catalog
// entry does not list its own options.
func DefaultOptions() []Option {
	return []Option{
		{Value: 1, Text: "Strongly Disagree"},
		{Value: 2, Text: "Disagree"},
		{Value: 3, Text: "Neutral"},
		{Value: 4, Text: "Agree"},
		{Value: 5, Text: "Strongly Agree"},
	}
}

// OptionFor returns the option carrying value.
func (q Question) OptionFor(value int) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}
