package insight

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write brief, warm reflections on personality self-assessment results.
Treat the type as a description of preferences, never as a diagnosis or a limit.
Address the reader as "you". Do not invent scores that are not given.
When dimensions are marked balanced, explain that both sides come naturally.
Respond with JSON only.`

func buildUserMessage(in Input) string {
	var b strings.Builder
	res := in.Result

	fmt.Fprintf(&b, "Result: %s", res.Type)
	if in.Analysis.Title != "" {
		fmt.Fprintf(&b, " (%s)", in.Analysis.Title)
	}
	fmt.Fprintf(&b, "\nConfidence: %.1f%% (%s)\n", res.Confidence, res.ConfidenceLevel)
	if res.SecondaryType != "" {
		fmt.Fprintf(&b, "Alternative type: %s\n", res.SecondaryType)
	}

	b.WriteString("\nDimension scores:\n")
	for _, d := range res.Dimensions {
		fmt.Fprintf(&b, "- %s: %s %.1f%% / %s %.1f%%", d.Name, d.LeftLabel, d.LeftScore, d.RightLabel, d.RightScore)
		if d.IsBorderline {
			b.WriteString(" (balanced)")
		}
		b.WriteString("\n")
	}

	if len(in.Analysis.Strengths) > 0 {
		fmt.Fprintf(&b, "\nTypical strengths: %s\n", strings.Join(in.Analysis.Strengths, "; "))
	}
	if len(in.Analysis.Weaknesses) > 0 {
		fmt.Fprintf(&b, "Typical blind spots: %s\n", strings.Join(in.Analysis.Weaknesses, "; "))
	}
	return b.String()
}
