package questionbank

import (
	"fmt"
	"sort"
	"strings"
)

const minTextLen = 10

// validateQuestions performs the structural checks on a question set and
// returns one line per problem found.
func validateQuestions(qs []Question) []string {
	var errs []string

	ids := make(map[string]bool, len(qs))
	texts := make(map[string]string, len(qs))

	for i, q := range qs {
		label := q.ID
		if label == "" {
			label = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Sprintf("question %s: missing id", label))
		}

		if q.ID != "" {
			if ids[q.ID] {
				errs = append(errs, fmt.Sprintf("duplicate question ID: %q", q.ID))
			}
			ids[q.ID] = true
		}

		if !q.Dimension.Valid() {
			errs = append(errs, fmt.Sprintf("question %s: invalid dimension %q", label, q.Dimension))
		}

		text := strings.TrimSpace(q.Text)
		if len(text) < minTextLen {
			errs = append(errs, fmt.Sprintf("question %s: text must be at least %d characters", label, minTextLen))
		} else {
			key := strings.ToLower(text)
			if prev, dup := texts[key]; dup {
				errs = append(errs, fmt.Sprintf("question %s: duplicate text (same as %s)", label, prev))
			}
			texts[key] = label
		}

		if q.Priority < 1 || q.Priority > 3 {
			errs = append(errs, fmt.Sprintf("question %s: priority must be 1-3, got %d", label, q.Priority))
		}

		errs = append(errs, validateOptions(label, q.Options)...)
	}

	return errs
}

func validateOptions(label string, opts []Option) []string {
	if len(opts) != 5 {
		return []string{fmt.Sprintf("question %s: expected 5 options, got %d", label, len(opts))}
	}

	var errs []string
	values := make([]int, 0, len(opts))
	for _, o := range opts {
		if strings.TrimSpace(o.Text) == "" {
			errs = append(errs, fmt.Sprintf("question %s: option %d has no text", label, o.Value))
		}
		values = append(values, o.Value)
	}
	sort.Ints(values)
	for i, v := range values {
		if v != i+1 {
			errs = append(errs, fmt.Sprintf("question %s: option values must be exactly 1-5, got %v", label, values))
			break
		}
	}
	return errs
}
