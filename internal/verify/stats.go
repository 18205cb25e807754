package verify

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"github.com/gymrun/gymrun/internal/classify"
)

// LeetCodeUserStats mirrors the public stats mirror payload.
type LeetCodeUserStats struct {
	TotalSolved        int     `json:"totalSolved"`
	TotalQuestions     int     `json:"totalQuestions"`
	EasySolved         int     `json:"easySolved"`
	MediumSolved       int     `json:"mediumSolved"`
	HardSolved         int     `json:"hardSolved"`
	AcceptanceRate     float64 `json:"acceptanceRate"`
	Ranking            int     `json:"ranking"`
	ContributionPoints int     `json:"contributionPoints"`
	Reputation         int     `json:"reputation"`
}

// CodeforcesUser mirrors the user.info payload.
type CodeforcesUser struct {
	Handle       string `json:"handle"`
	Country      string `json:"country,omitempty"`
	Organization string `json:"organization,omitempty"`
	Contribution int    `json:"contribution"`
	Rank         string `json:"rank"`
	Rating       int    `json:"rating"`
	MaxRank      string `json:"maxRank"`
	MaxRating    int    `json:"maxRating"`
	FriendOf     int    `json:"friendOfCount"`
}

// CodeforcesSubmission mirrors one user.status entry.
type CodeforcesSubmission struct {
	ID                  int    `json:"id"`
	ContestID           int    `json:"contestId"`
	CreationTimeSeconds int64  `json:"creationTimeSeconds"`
	Verdict             string `json:"verdict"`
	ProgrammingLanguage string `json:"programmingLanguage"`
	Problem             struct {
		ContestID int      `json:"contestId"`
		Index     string   `json:"index"`
		Name      string   `json:"name"`
		Rating    int      `json:"rating"`
		Tags      []string `json:"tags"`
	} `json:"problem"`
	Author struct {
		ParticipantType string `json:"participantType"`
	} `json:"author"`
}

// Performance aggregates accepted submissions into solve histograms.
// Unique problems count once regardless of resubmissions.
type Performance struct {
	Total         int            `json:"total"`
	ByDifficulty  map[string]int `json:"byDifficulty"`
	ByProblemType map[string]int `json:"byProblemType"`
	ByContestType map[string]int `json:"byContestType"`
	VerdictStats  map[string]int `json:"verdictStats"`
	LanguageStats map[string]int `json:"languageStats"`
}

// AdvancedStats carries the deeper per-user aggregates.
type AdvancedStats struct {
	TotalContests           int     `json:"totalContests"`
	AvgAttempts             float64 `json:"avgAttempts"`
	MaxAttempts             int     `json:"maxAttempts"`
	SolvedWithOneSubmission int     `json:"solvedWithOneSubmission"`
	MaxACs                  int     `json:"maxACs"`
}

// UserStats is the combined per-user statistics response.
type UserStats struct {
	LeetCode   *LeetCodeUserStats `json:"leetcode,omitempty"`
	Codeforces *CodeforcesStats   `json:"codeforces,omitempty"`
}

// CodeforcesStats bundles profile, performance and advanced aggregates.
type CodeforcesStats struct {
	User        CodeforcesUser `json:"user"`
	Performance Performance    `json:"performance"`
	Advanced    AdvancedStats  `json:"advanced"`
}

// DifficultyBand labels a problem rating with its Codeforces rank band.
func DifficultyBand(rating int) string {
	switch {
	case rating < 1000:
		return "Newbie (800-999)"
	case rating < 1200:
		return "Pupil (1000-1199)"
	case rating < 1400:
		return "Specialist (1200-1399)"
	case rating < 1600:
		return "Expert (1400-1599)"
	case rating < 1900:
		return "Candidate Master (1600-1899)"
	case rating < 2100:
		return "Master (1900-2099)"
	case rating < 2300:
		return "International Master (2100-2299)"
	case rating < 2400:
		return "Grandmaster (2300-2399)"
	case rating < 2600:
		return "International Grandmaster (2400-2599)"
	default:
		return "Legendary Grandmaster (2600+)"
	}
}

// AnalyzePerformance builds solve histograms from a submission history.
// The contest name map refines the contest-type bucket; without it the
// contest id heuristic applies.
func AnalyzePerformance(submissions []CodeforcesSubmission, contestNames map[int]string) Performance {
	perf := Performance{
		ByDifficulty:  make(map[string]int),
		ByProblemType: make(map[string]int),
		ByContestType: make(map[string]int),
		VerdictStats:  make(map[string]int),
		LanguageStats: make(map[string]int),
	}

	unique := make(map[string]struct{})
	for _, sub := range submissions {
		perf.VerdictStats[sub.Verdict]++
		perf.LanguageStats[sub.ProgrammingLanguage]++

		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d%s", sub.Problem.ContestID, sub.Problem.Index)
		if _, seen := unique[key]; seen {
			continue
		}
		unique[key] = struct{}{}

		if sub.Problem.Rating > 0 {
			perf.ByDifficulty[DifficultyBand(sub.Problem.Rating)]++
		}
		if sub.Problem.Index != "" {
			perf.ByProblemType[sub.Problem.Index[:1]]++
		}
		if name, ok := contestNames[sub.Problem.ContestID]; ok {
			perf.ByContestType[classify.ContestTypeFromName(name)]++
		} else {
			perf.ByContestType[classify.ContestTypeFromID(sub.Problem.ContestID)]++
		}
	}

	perf.Total = len(unique)
	return perf
}

// ComputeAdvancedStats derives attempt-pattern aggregates from a
// submission history.
func ComputeAdvancedStats(submissions []CodeforcesSubmission) AdvancedStats {
	contestIDs := make(map[int]struct{})
	attempts := make(map[string]int)
	acCounts := make(map[string]int)

	for _, sub := range submissions {
		if sub.Author.ParticipantType == "CONTESTANT" {
			contestIDs[sub.ContestID] = struct{}{}
		}
		key := fmt.Sprintf("%d%s", sub.Problem.ContestID, sub.Problem.Index)
		attempts[key]++
		if sub.Verdict == "OK" {
			acCounts[key]++
		}
	}

	stats := AdvancedStats{TotalContests: len(contestIDs)}

	total := 0
	for _, n := range attempts {
		total += n
		if n > stats.MaxAttempts {
			stats.MaxAttempts = n
		}
	}
	if len(attempts) > 0 {
		stats.AvgAttempts = math.Round(float64(total)/float64(len(attempts))*100) / 100
	}

	for key, acs := range acCounts {
		if attempts[key] == 1 {
			stats.SolvedWithOneSubmission++
		}
		if acs > stats.MaxACs {
			stats.MaxACs = acs
		}
	}
	return stats
}

type codeforcesUserResponse struct {
	Status  string           `json:"status"`
	Result  []CodeforcesUser `json:"result"`
	Comment string           `json:"comment"`
}

// FetchUserStats assembles the combined statistics for the given handles.
// A missing handle skips that platform; a failed platform is logged by the
// caller, not fatal here.
func (c *HTTPChecker) FetchUserStats(ctx context.Context, leetcodeHandle, codeforcesHandle string) (UserStats, error) {
	var stats UserStats

	if leetcodeHandle != "" {
		lc, err := c.fetchLeetCodeStats(ctx, leetcodeHandle)
		if err != nil {
			return stats, fmt.Errorf("leetcode stats: %w", err)
		}
		stats.LeetCode = lc
	}

	if codeforcesHandle != "" {
		cf, err := c.fetchCodeforcesStats(ctx, codeforcesHandle)
		if err != nil {
			return stats, fmt.Errorf("codeforces stats: %w", err)
		}
		stats.Codeforces = cf
	}
	return stats, nil
}

func (c *HTTPChecker) fetchLeetCodeStats(ctx context.Context, handle string) (*LeetCodeUserStats, error) {
	var stats LeetCodeUserStats
	endpoint := fmt.Sprintf("%s/%s", c.cfg.LeetCodeMirror, url.PathEscape(handle))
	if err := c.getJSON(ctx, endpoint, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPChecker) fetchCodeforcesStats(ctx context.Context, handle string) (*CodeforcesStats, error) {
	userEndpoint := fmt.Sprintf("%s/user.info?handles=%s", c.cfg.CodeforcesAPI, url.QueryEscape(handle))
	var userResp codeforcesUserResponse
	if err := c.getJSON(ctx, userEndpoint, &userResp); err != nil {
		return nil, err
	}
	if userResp.Status != "OK" || len(userResp.Result) == 0 {
		return nil, fmt.Errorf("user %q not found: %s", handle, userResp.Comment)
	}

	statusEndpoint := fmt.Sprintf("%s/user.status?handle=%s&from=1&count=%d",
		c.cfg.CodeforcesAPI, url.QueryEscape(handle), c.cfg.SubmissionCount)
	var statusResp codeforcesStatusResponse
	if err := c.getJSON(ctx, statusEndpoint, &statusResp); err != nil {
		return nil, err
	}
	if statusResp.Status != "OK" {
		return nil, fmt.Errorf("API error: %s", statusResp.Comment)
	}

	return &CodeforcesStats{
		User:        userResp.Result[0],
		Performance: AnalyzePerformance(statusResp.Result, nil),
		Advanced:    ComputeAdvancedStats(statusResp.Result),
	}, nil
}
