package questionbank

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/abhisek/persona/internal/dimension"
)

// Selector assembles the question list for a test.
type Selector struct {
	catalog *Catalog
	rng     *rand.Rand
}

// NewSelector creates a Selector over c. A nil rng is replaced by a
// time-seeded source; tests pass a fixed seed.
func NewSelector(c *Catalog, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	return &Selector{catalog: c, rng: rng}
}

// Select returns up to cfg.QuestionsPerDimension questions from every
// dimension, shuffled together. A catalog too small to fill a quota yields
// a shorter list.
func (s *Selector) Select(cfg LengthConfig) []Question {
	return s.assemble(cfg, nil, nil)
}

// SelectRemaining builds the unanswered tail of a test whose earlier
// questions (answered) are already fixed. Each dimension's quota is reduced
// by the number of answered questions it owns, including questions that are
// no longer in the catalog.
func (s *Selector) SelectRemaining(cfg LengthConfig, answered []Question) []Question {
	exclude := make(map[string]bool, len(answered))
	taken := make(map[dimension.Dimension]int)
	for _, q := range answered {
		if exclude[q.ID] {
			continue
		}
		exclude[q.ID] = true
		taken[q.Dimension]++
	}
	return s.assemble(cfg, exclude, taken)
}

func (s *Selector) assemble(cfg LengthConfig, exclude map[string]bool, taken map[dimension.Dimension]int) []Question {
	var out []Question
	for _, d := range dimension.All() {
		quota := cfg.QuestionsPerDimension - taken[d]
		if quota <= 0 {
			continue
		}
		out = append(out, s.pick(d, cfg, quota, exclude)...)
	}
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// pick fills one dimension's quota: preferred tiers first in ascending
// priority, then any other question of the dimension in catalog order.
func (s *Selector) pick(d dimension.Dimension, cfg LengthConfig, quota int, exclude map[string]bool) []Question {
	pool := s.catalog.ByDimension(d)

	var preferred []Question
	for _, q := range pool {
		if cfg.Allows(q.Priority) && !exclude[q.ID] {
			preferred = append(preferred, q)
		}
	}
	sort.SliceStable(preferred, func(i, j int) bool {
		return preferred[i].Priority < preferred[j].Priority
	})
	if len(preferred) >= quota {
		return preferred[:quota]
	}

	picked := make(map[string]bool, len(preferred))
	for _, q := range preferred {
		picked[q.ID] = true
	}
	for _, q := range pool {
		if len(preferred) == quota {
			break
		}
		if picked[q.ID] || exclude[q.ID] {
			continue
		}
		preferred = append(preferred, q)
	}
	return preferred
}
