// Package classify derives missing problem metadata from weak signals:
// numeric ratings, title slugs, contest ids and contest display names.
// Everything here is pure and total; malformed input falls through to a
// documented default, never an error.
package classify

import (
	"sort"
	"strings"
)

// Difficulty tiers shared by both platforms.
const (
	TierEasy   = "Easy"
	TierMedium = "Medium"
	TierHard   = "Hard"
)

// Rating cutoffs for tier inference.
const (
	easyCeiling   = 1200
	mediumCeiling = 1800
)

// DifficultyTier maps a numeric rating onto a categorical tier.
func DifficultyTier(rating int) string {
	switch {
	case rating <= easyCeiling:
		return TierEasy
	case rating <= mediumCeiling:
		return TierMedium
	default:
		return TierHard
	}
}

// tagRule matches when any of anyOf appears in the slug, and, if allOf is
// set, every allOf entry appears too.
type tagRule struct {
	anyOf []string
	allOf []string
	tag   string
}

// tagRules is the fixed trigger vocabulary, evaluated in one pass. Order is
// the emission order of inferred tags.
var tagRules = []tagRule{
	// Data structures
	{anyOf: []string{"tree", "binary"}, tag: "Tree"},
	{anyOf: []string{"array", "matrix"}, tag: "Array"},
	{anyOf: []string{"string", "substring"}, tag: "String"},
	{anyOf: []string{"list", "linked"}, tag: "Linked List"},
	{anyOf: []string{"stack"}, tag: "Stack"},
	{anyOf: []string{"queue"}, tag: "Queue"},
	{anyOf: []string{"heap", "priority"}, tag: "Heap"},
	{anyOf: []string{"hash", "map", "dict"}, tag: "Hash Table"},
	{anyOf: []string{"graph", "node"}, tag: "Graph"},
	{anyOf: []string{"trie"}, tag: "Trie"},
	{anyOf: []string{"union", "find"}, tag: "Union Find"},

	// Algorithms
	{anyOf: []string{"sort", "merge"}, tag: "Sorting"},
	{anyOf: []string{"search"}, allOf: []string{"binary"}, tag: "Binary Search"},
	{anyOf: []string{"dp", "dynamic"}, tag: "Dynamic Programming"},
	{anyOf: []string{"greedy"}, tag: "Greedy"},
	{anyOf: []string{"backtrack"}, tag: "Backtracking"},
	{anyOf: []string{"dfs", "depth"}, tag: "Depth-First Search"},
	{anyOf: []string{"bfs", "breadth"}, tag: "Breadth-First Search"},

	// Techniques
	{anyOf: []string{"two"}, allOf: []string{"pointer"}, tag: "Two Pointers"},
	{anyOf: []string{"sliding"}, allOf: []string{"window"}, tag: "Sliding Window"},
	{anyOf: []string{"divide"}, allOf: []string{"conquer"}, tag: "Divide and Conquer"},
	{anyOf: []string{"recursion", "recursive"}, tag: "Recursion"},
	{anyOf: []string{"monotonic"}, tag: "Monotonic Stack"},
	{anyOf: []string{"prefix", "suffix"}, tag: "Prefix Sum"},

	// Math
	{anyOf: []string{"math", "number"}, tag: "Math"},
	{anyOf: []string{"bit", "xor", "manipulation"}, tag: "Bit Manipulation"},
	{anyOf: []string{"geometry"}, tag: "Geometry"},
	{anyOf: []string{"combinatorics", "permutation"}, tag: "Combinatorics"},

	// Problem archetypes
	{anyOf: []string{"simulation"}, tag: "Simulation"},
	{anyOf: []string{"design"}, tag: "Design"},
	{anyOf: []string{"game"}, tag: "Game Theory"},
}

func (r tagRule) matches(slug string) bool {
	hit := false
	for _, s := range r.anyOf {
		if strings.Contains(slug, s) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, s := range r.allOf {
		if !strings.Contains(slug, s) {
			return false
		}
	}
	return true
}

// InferTags derives topic tags from a title slug and rating when the source
// carries none. The difficulty tier is always the first tag; the generic
// "Algorithm" tag is the last-resort guarantee of a non-empty result beyond
// the tier alone.
func InferTags(titleSlug string, rating int, tier string) []string {
	slug := strings.ToLower(titleSlug)
	tags := []string{tier}

	for _, rule := range tagRules {
		if rule.matches(slug) {
			tags = append(tags, rule.tag)
		}
	}

	// Rating-band supplements mirror typical contest topic distributions.
	switch {
	case rating >= 1400 && rating <= 1600:
		tags = append(tags, "Two Pointers", "Array")
	case rating > 1600 && rating <= 1800:
		tags = append(tags, "Dynamic Programming", "Graph")
	case rating > 1800:
		tags = append(tags, "Advanced Algorithms", "Data Structures")
	}

	if len(tags) == 1 {
		tags = append(tags, "Algorithm")
	}
	return Dedupe(tags)
}

// Dedupe removes duplicate tags preserving first-seen order. The result is
// never nil.
func Dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Era cutoffs: one fixed numeric cutoff per platform.
const (
	codeforcesEraCutoff = 1650 // contest ids from 2022 onward
	leetcodeEraCutoff   = 300  // contest ids from 2021 onward
	leetcodeEraRating   = 1400 // rating fallback when no contest id
)

// CodeforcesEra buckets a contest id into old/new.
func CodeforcesEra(contestID int) string {
	if contestID >= codeforcesEraCutoff {
		return "new"
	}
	return "old"
}

// LeetCodeEra buckets a LeetCode problem into old/new from its contest id,
// falling back to the rating when the problem has no contest.
func LeetCodeEra(contestID, rating int) string {
	if contestID > 0 {
		if contestID >= leetcodeEraCutoff {
			return "new"
		}
		return "old"
	}
	if rating >= leetcodeEraRating {
		return "new"
	}
	return "old"
}

// namePattern maps case-insensitive contest-name substrings onto a division
// bucket. Evaluated in order; first match wins.
type namePattern struct {
	subs []string
	typ  string
}

var namePatterns = []namePattern{
	{subs: []string{"div. 1", "div 1", "division 1", "div1"}, typ: "div1"},
	{subs: []string{"div. 2", "div 2", "division 2", "div2"}, typ: "div2"},
	{subs: []string{"div. 3", "div 3", "division 3", "div3"}, typ: "div3"},
	{subs: []string{"div. 4", "div 4", "division 4", "div4"}, typ: "div4"},
	{subs: []string{"educational", "edu"}, typ: "educational"},
	{subs: []string{"global"}, typ: "global"},
	{subs: []string{"good bye", "hello", "april fool"}, typ: "special"},
	{subs: []string{"beta round"}, typ: "other"},
}

// ContestTypeFromName derives a division bucket from a contest display name.
// This is the preferred path; ContestTypeFromID is only a fallback for
// contests whose names could not be resolved.
func ContestTypeFromName(contestName string) string {
	name := strings.ToLower(contestName)
	for _, p := range namePatterns {
		for _, s := range p.subs {
			if strings.Contains(name, s) {
				return p.typ
			}
		}
	}
	return "other"
}

// ContestTypeFromID approximates a division from modulo arithmetic over the
// contest id, with different tables per id range. There is no ground truth
// in-band for this mapping; it is best-effort only.
func ContestTypeFromID(contestID int) string {
	switch {
	case contestID >= 1950:
		switch mod := contestID % 10; {
		case mod <= 2:
			return "div2"
		case mod <= 4:
			return "div3"
		case mod <= 6:
			return "div1"
		case mod <= 8:
			return "educational"
		default:
			return "div4"
		}
	case contestID >= 1800:
		switch mod := contestID % 8; {
		case mod <= 2:
			return "div2"
		case mod <= 4:
			return "div1"
		case mod <= 6:
			return "educational"
		default:
			return "div3"
		}
	case contestID >= 1600:
		switch mod := contestID % 6; {
		case mod <= 2:
			return "div2"
		case mod <= 4:
			return "div1"
		default:
			return "educational"
		}
	case contestID >= 1400:
		switch contestID % 3 {
		case 0:
			return "div2"
		case 1:
			return "div1"
		default:
			return "educational"
		}
	case contestID >= 1000:
		if contestID%2 == 0 {
			return "div2"
		}
		return "div1"
	default:
		return "other"
	}
}

// Question ordinal rating bands used when a problem has no contest group.
var ordinalBands = []struct {
	ceiling int
	ordinal int
}{
	{1200, 1},
	{1600, 2},
	{2000, 3},
}

// QuestionOrdinalFromRating estimates the 1..4 contest slot from a rating.
func QuestionOrdinalFromRating(rating int) int {
	for _, b := range ordinalBands {
		if rating <= b.ceiling {
			return b.ordinal
		}
	}
	return 4
}

// QuestionOrdinals ranks the members of one contest group by ascending
// rating and assigns ordinals 1..4. Groups larger than four clamp the tail
// to 4; a singleton group gets ordinal 1. The returned map is keyed by the
// group indices passed in.
func QuestionOrdinals(ratings map[int]int) map[int]int {
	out := make(map[int]int, len(ratings))
	if len(ratings) == 0 {
		return out
	}

	keys := make([]int, 0, len(ratings))
	for k := range ratings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := ratings[keys[i]], ratings[keys[j]]
		if ri == rj {
			return keys[i] < keys[j]
		}
		return ri < rj
	})

	for pos, k := range keys {
		ordinal := pos + 1
		if ordinal > 4 {
			ordinal = 4
		}
		out[k] = ordinal
	}
	return out
}
