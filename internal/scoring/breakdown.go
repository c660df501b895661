package scoring

import (
	"github.com/abhisek/persona/internal/dimension"
	"github.com/abhisek/persona/internal/ledger"
)

// DimensionBreakdown summarises the raw answers given for one dimension.
type DimensionBreakdown struct {
	Dimension     dimension.Dimension `json:"dimension"`
	Name          string              `json:"name"`
	ResponseCount int                 `json:"response_count"`
	AverageValue  float64             `json:"average_value"`
}

// Breakdown reports count and mean raw value per dimension, in
// dimension.All() order. Reverse coding is not applied.
func Breakdown(responses []ledger.Response) []DimensionBreakdown {
	dims := dimension.All()
	sums := make([]int, len(dims))
	counts := make([]int, len(dims))
	for _, r := range responses {
		i := dimension.Index(r.Dimension)
		if i < 0 {
			continue
		}
		sums[i] += r.Value
		counts[i]++
	}

	out := make([]DimensionBreakdown, 0, len(dims))
	for i, d := range dims {
		b := DimensionBreakdown{Dimension: d, Name: d.Name(), ResponseCount: counts[i]}
		if counts[i] > 0 {
			b.AverageValue = float64(sums[i]) / float64(counts[i])
		}
		out = append(out, b)
	}
	return out
}
