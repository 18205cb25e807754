package fetch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gymrun/gymrun/internal/domain"
)

// codeforcesProblemsResponse mirrors the problemset.problems envelope.
type codeforcesProblemsResponse struct {
	Status string `json:"status"`
	Result struct {
		Problems          []domain.RawCodeforcesProblem `json:"problems"`
		ProblemStatistics []struct {
			ContestID   int    `json:"contestId"`
			Index       string `json:"index"`
			SolvedCount int    `json:"solvedCount"`
		} `json:"problemStatistics"`
	} `json:"result"`
	Comment string `json:"comment"`
}

// codeforcesContestsResponse mirrors the contest.list envelope.
type codeforcesContestsResponse struct {
	Status string `json:"status"`
	Result []struct {
		ID               int    `json:"id"`
		Name             string `json:"name"`
		Phase            string `json:"phase"`
		StartTimeSeconds int64  `json:"startTimeSeconds"`
	} `json:"result"`
	Comment string `json:"comment"`
}

// FetchCodeforcesProblems retrieves the full problemset with solve counts
// merged in from the statistics sibling array.
func (c *Client) FetchCodeforcesProblems(ctx context.Context) ([]domain.RawCodeforcesProblem, error) {
	var problems []domain.RawCodeforcesProblem
	err := c.fetchChain(ctx, string(domain.PlatformCodeforces), c.sources.CodeforcesProblems,
		func(raw json.RawMessage) error {
			var resp codeforcesProblemsResponse
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("failed to parse problemset: %w", err)
			}
			if resp.Status != "OK" {
				return fmt.Errorf("API error: %s", resp.Comment)
			}
			if len(resp.Result.Problems) == 0 {
				return fmt.Errorf("empty problemset")
			}

			solved := make(map[string]int, len(resp.Result.ProblemStatistics))
			for _, stat := range resp.Result.ProblemStatistics {
				solved[fmt.Sprintf("%d%s", stat.ContestID, stat.Index)] = stat.SolvedCount
			}

			problems = resp.Result.Problems
			for i := range problems {
				key := fmt.Sprintf("%d%s", problems[i].ContestID, problems[i].Index)
				problems[i].SolvedCount = solved[key]
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return problems, nil
}

// FetchCodeforcesContests retrieves finished contests keyed by id.
func (c *Client) FetchCodeforcesContests(ctx context.Context) (map[int]domain.ContestInfo, error) {
	contests := make(map[int]domain.ContestInfo)
	err := c.fetchChain(ctx, string(domain.PlatformCodeforces), c.sources.CodeforcesContests,
		func(raw json.RawMessage) error {
			var resp codeforcesContestsResponse
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("failed to parse contest list: %w", err)
			}
			if resp.Status != "OK" {
				return fmt.Errorf("API error: %s", resp.Comment)
			}
			for _, entry := range resp.Result {
				if entry.Phase != "FINISHED" {
					continue
				}
				contests[entry.ID] = domain.ContestInfo{
					ID:        entry.ID,
					Name:      entry.Name,
					StartTime: entry.StartTimeSeconds,
				}
			}
			if len(contests) == 0 {
				return fmt.Errorf("no finished contests in list")
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return contests, nil
}
