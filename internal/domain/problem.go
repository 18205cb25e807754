// Package domain holds the unified problem model shared by the fetch,
// classification, store and training layers.
package domain

import "fmt"

// Platform identifies the upstream service a problem originates from.
type Platform string

const (
	PlatformLeetCode   Platform = "leetcode"
	PlatformCodeforces Platform = "codeforces"
)

// PlatformAll is the filter wildcard, not a valid Problem platform.
const PlatformAll = "all"

// Valid reports whether p names a real upstream platform.
func (p Platform) Valid() bool {
	return p == PlatformLeetCode || p == PlatformCodeforces
}

// Problem is the unified entity both platforms normalize into. It is
// immutable after normalization; the ID is the sole lookup and
// de-duplication key everywhere (cache keys, generator used-set, API
// responses).
type Problem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Platform    Platform `json:"platform"`
	Difficulty  string   `json:"difficulty"`
	Rating      int      `json:"rating,omitempty"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	SolvedCount int      `json:"solvedCount,omitempty"`

	ContestID   string `json:"contestId,omitempty"`
	ContestName string `json:"contestName,omitempty"`

	// Codeforces specific
	ContestType string `json:"contestType,omitempty"`
	ProblemType string `json:"problemType,omitempty"`
	ContestEra  string `json:"contestEra,omitempty"`

	// LeetCode specific: 1..4 slot within a contest
	ContestQuestionNumber int `json:"contestQuestionNumber,omitempty"`
}

// ProblemID builds the canonical id from a platform and its native key.
func ProblemID(platform Platform, nativeKey string) string {
	return fmt.Sprintf("%s-%s", platform, nativeKey)
}

// Contest eras. Coarse before/after buckets derived from contest ids.
const (
	EraOld = "old"
	EraNew = "new"
)

// Contest division/type buckets derived from contest names.
const (
	ContestDiv1        = "div1"
	ContestDiv2        = "div2"
	ContestDiv3        = "div3"
	ContestDiv4        = "div4"
	ContestEducational = "educational"
	ContestGlobal      = "global"
	ContestSpecial     = "special"
	ContestOther       = "other"
)

// RawLeetCodeProblem mirrors the zerotrac rating dataset entries.
type RawLeetCodeProblem struct {
	ID          int     `json:"ID"`
	Rating      float64 `json:"Rating"`
	Title       string  `json:"Title"`
	TitleSlug   string  `json:"TitleSlug"`
	ContestSlug string  `json:"ContestSlug"`
	ContestID   int     `json:"ContestID_en"`
}

// RawCodeforcesProblem mirrors problemset.problems entries.
type RawCodeforcesProblem struct {
	ContestID   int      `json:"contestId"`
	Index       string   `json:"index"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Rating      int      `json:"rating"`
	Tags        []string `json:"tags"`
	SolvedCount int      `json:"solvedCount,omitempty"`
}

// ContestInfo is a resolved upstream contest used for name and era lookup.
type ContestInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	StartTime int64  `json:"startTime,omitempty"`
	Era       string `json:"era,omitempty"`
}
