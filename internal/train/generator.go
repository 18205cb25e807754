package train

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
)

// Set is one generated training set. Shortfalls lists the targets no
// candidate could be found for; a full set has four problems and none.
type Set struct {
	Platform   domain.Platform  `json:"platform"`
	Level      int              `json:"level"`
	Problems   []domain.Problem `json:"problems"`
	Shortfalls []string         `json:"shortfalls,omitempty"`
}

// Generator draws leveled problem sets from a pool. The random source is
// injected so tests are deterministic.
type Generator struct {
	rng     *rand.Rand
	metrics *metrics.Registry
}

// NewGenerator builds a generator over the given source.
func NewGenerator(src rand.Source, m *metrics.Registry) *Generator {
	return &Generator{rng: rand.New(src), metrics: m}
}

// ratingTolerance widens the second candidate pass when no exact rating
// match exists.
const ratingTolerance = 50

// Generate draws a four-problem set for the platform and level. Slots are
// filled left to right; a problem is never used twice within one set.
// Slots with no candidate are skipped and reported as shortfalls, so the
// result carries between zero and four problems.
func (g *Generator) Generate(pool []domain.Problem, platform domain.Platform, level int) (Set, error) {
	set := Set{Platform: platform, Level: level}

	switch platform {
	case domain.PlatformCodeforces:
		targets, ok := CodeforcesTargets(level)
		if !ok {
			return set, fmt.Errorf("invalid codeforces level %d", level)
		}
		used := make(map[string]struct{}, 4)
		for _, rating := range targets {
			p, found := g.pickByRating(pool, used, rating)
			if !found {
				set.Shortfalls = append(set.Shortfalls, fmt.Sprintf("rating ~%d", rating))
				g.metrics.GenShortfalls.Inc()
				continue
			}
			set.Problems = append(set.Problems, p)
			used[p.ID] = struct{}{}
		}

	case domain.PlatformLeetCode:
		targets, ok := LeetCodeTargets(level)
		if !ok {
			return set, fmt.Errorf("invalid leetcode level %d", level)
		}
		used := make(map[string]struct{}, 4)
		for _, tier := range targets {
			p, found := g.pickByTier(pool, used, tier)
			if !found {
				set.Shortfalls = append(set.Shortfalls, fmt.Sprintf("difficulty %s", tier))
				g.metrics.GenShortfalls.Inc()
				continue
			}
			set.Problems = append(set.Problems, p)
			used[p.ID] = struct{}{}
		}

	default:
		return set, fmt.Errorf("unknown platform %q", platform)
	}

	return set, nil
}

func (g *Generator) pickByRating(pool []domain.Problem, used map[string]struct{}, rating int) (domain.Problem, bool) {
	candidates := collect(pool, used, func(p domain.Problem) bool {
		return p.Platform == domain.PlatformCodeforces && p.Rating == rating
	})
	if len(candidates) == 0 {
		candidates = collect(pool, used, func(p domain.Problem) bool {
			return p.Platform == domain.PlatformCodeforces && p.Rating != 0 &&
				abs(p.Rating-rating) <= ratingTolerance
		})
	}
	return g.pick(candidates)
}

func (g *Generator) pickByTier(pool []domain.Problem, used map[string]struct{}, tier string) (domain.Problem, bool) {
	candidates := collect(pool, used, func(p domain.Problem) bool {
		return p.Platform == domain.PlatformLeetCode && strings.EqualFold(p.Difficulty, tier)
	})
	return g.pick(candidates)
}

func (g *Generator) pick(candidates []domain.Problem) (domain.Problem, bool) {
	if len(candidates) == 0 {
		return domain.Problem{}, false
	}
	return candidates[g.rng.Intn(len(candidates))], true
}

func collect(pool []domain.Problem, used map[string]struct{}, keep func(domain.Problem) bool) []domain.Problem {
	out := make([]domain.Problem, 0, 16)
	for _, p := range pool {
		if _, taken := used[p.ID]; taken {
			continue
		}
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
