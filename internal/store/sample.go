package store

import "github.com/gymrun/gymrun/internal/domain"

// SampleProblems is the built-in emergency pool served when every
// upstream source is unreachable. It keeps the filter and generation
// surfaces exercisable offline.
func SampleProblems() []domain.Problem {
	return []domain.Problem{
		{
			ID:                    "leetcode-1",
			Title:                 "Two Sum",
			Platform:              domain.PlatformLeetCode,
			Difficulty:            "Easy",
			Rating:                800,
			Tags:                  []string{"Easy", "Array", "Hash Table"},
			URL:                   "https://leetcode.com/problems/two-sum/",
			ContestEra:            domain.EraOld,
			ContestQuestionNumber: 1,
		},
		{
			ID:                    "leetcode-102",
			Title:                 "Binary Tree Level Order Traversal",
			Platform:              domain.PlatformLeetCode,
			Difficulty:            "Medium",
			Rating:                1400,
			Tags:                  []string{"Medium", "Tree", "Breadth-First Search"},
			URL:                   "https://leetcode.com/problems/binary-tree-level-order-traversal/",
			ContestEra:            domain.EraNew,
			ContestQuestionNumber: 2,
		},
		{
			ID:                    "leetcode-42",
			Title:                 "Trapping Rain Water",
			Platform:              domain.PlatformLeetCode,
			Difficulty:            "Hard",
			Rating:                2100,
			Tags:                  []string{"Hard", "Array", "Two Pointers", "Stack"},
			URL:                   "https://leetcode.com/problems/trapping-rain-water/",
			ContestEra:            domain.EraNew,
			ContestQuestionNumber: 4,
		},
		{
			ID:          "codeforces-1A",
			Title:       "A. Theatre Square",
			Platform:    domain.PlatformCodeforces,
			Difficulty:  "1000",
			Rating:      1000,
			Tags:        []string{"math"},
			URL:         "https://codeforces.com/problemset/problem/1/A",
			SolvedCount: 250000,
			ContestID:   "1",
			ContestName: "Codeforces Beta Round #1",
			ContestType: domain.ContestOther,
			ProblemType: "A",
			ContestEra:  domain.EraOld,
		},
		{
			ID:          "codeforces-1700A",
			Title:       "A. Optimal Path",
			Platform:    domain.PlatformCodeforces,
			Difficulty:  "800",
			Rating:      800,
			Tags:        []string{"constructive algorithms", "greedy", "math"},
			URL:         "https://codeforces.com/problemset/problem/1700/A",
			SolvedCount: 30000,
			ContestID:   "1700",
			ContestName: "Codeforces Round 806 (Div. 4)",
			ContestType: domain.ContestDiv4,
			ProblemType: "A",
			ContestEra:  domain.EraNew,
		},
		{
			ID:          "codeforces-1700D",
			Title:       "D. River Locks",
			Platform:    domain.PlatformCodeforces,
			Difficulty:  "1700",
			Rating:      1700,
			Tags:        []string{"binary search", "greedy", "math"},
			URL:         "https://codeforces.com/problemset/problem/1700/D",
			SolvedCount: 9000,
			ContestID:   "1700",
			ContestName: "Codeforces Round 806 (Div. 4)",
			ContestType: domain.ContestDiv4,
			ProblemType: "D",
			ContestEra:  domain.EraNew,
		},
	}
}
