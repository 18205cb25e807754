package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gymrun/gymrun/internal/domain"
)

// codeforcesDifficultyRanges maps a bucket onto an inclusive rating range.
// The shared ends are intentional: a 1200 problem is both easy and medium.
var codeforcesDifficultyRanges = map[string][2]int{
	"easy":   {0, 1200},
	"medium": {1200, 1800},
	"hard":   {1800, 3500},
}

// Filter applies every active predicate to the pool and returns the
// survivors sorted by ascending difficulty. Stages run in a fixed order;
// each consumes the previous stage's output, so the pipeline is idempotent
// and adding predicates can only shrink the result. The input slice is
// never mutated.
func Filter(problems []domain.Problem, f domain.Filters) []domain.Problem {
	out := make([]domain.Problem, 0, len(problems))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	for _, p := range problems {
		if f.Platform != "" && f.Platform != domain.FilterAll && string(p.Platform) != f.Platform {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		// Unrated problems fail any set bound.
		if f.MinRating != nil && (p.Rating == 0 || p.Rating < *f.MinRating) {
			continue
		}
		if f.MaxRating != nil && (p.Rating == 0 || p.Rating > *f.MaxRating) {
			continue
		}
		if f.Difficulty != "" && f.Difficulty != domain.FilterAll && !matchesDifficulty(p, f.Difficulty) {
			continue
		}
		if !hasAllTags(p.Tags, f.Tags) {
			continue
		}
		// The contest dimensions only exist on Codeforces; an active filter
		// excludes the other platform entirely.
		if f.ContestType != "" && f.ContestType != domain.FilterAll &&
			(p.Platform != domain.PlatformCodeforces || p.ContestType != f.ContestType) {
			continue
		}
		if f.ProblemType != "" && f.ProblemType != domain.FilterAll &&
			(p.Platform != domain.PlatformCodeforces || p.ProblemType != f.ProblemType) {
			continue
		}
		if f.ContestEra != "" && f.ContestEra != domain.FilterAll &&
			(p.Platform != domain.PlatformCodeforces || p.ContestEra != f.ContestEra) {
			continue
		}
		// The question slot only exists on LeetCode.
		if f.QuestionNumber != "" && f.QuestionNumber != domain.FilterAll &&
			(p.Platform != domain.PlatformLeetCode ||
				strconv.Itoa(p.ContestQuestionNumber) != f.QuestionNumber) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return difficultyRank(out[i]) < difficultyRank(out[j])
	})
	return out
}

// matchesDifficulty evaluates the difficulty bucket per platform: LeetCode
// by categorical equality, Codeforces by rating range.
func matchesDifficulty(p domain.Problem, want string) bool {
	if p.Platform == domain.PlatformCodeforces {
		r, ok := codeforcesDifficultyRanges[strings.ToLower(want)]
		if !ok || p.Rating == 0 {
			return false
		}
		return p.Rating >= r[0] && p.Rating <= r[1]
	}
	return strings.EqualFold(p.Difficulty, want)
}

// difficultyRank orders problems for the final sort. Codeforces ranks by
// rating with strict cutoffs; unrated and unknown tiers sort as medium.
func difficultyRank(p domain.Problem) int {
	if p.Platform == domain.PlatformCodeforces {
		switch {
		case p.Rating == 0:
			return 2
		case p.Rating < 1200:
			return 1
		case p.Rating < 1800:
			return 2
		default:
			return 3
		}
	}
	switch p.Difficulty {
	case "Easy":
		return 1
	case "Medium":
		return 2
	case "Hard":
		return 3
	default:
		return 2
	}
}

func matchesQuery(p domain.Problem, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return true
		}
	}
	return false
}

// hasAllTags reports whether every wanted tag appears on the problem,
// case-insensitively. An empty want list passes everything.
func hasAllTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[strings.ToLower(t)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[strings.ToLower(w)]; !ok {
			return false
		}
	}
	return true
}
