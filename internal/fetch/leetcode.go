package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/domain"
)

// leetCodeContestRoster mirrors the contest listing endpoint payload.
type leetCodeContestRoster struct {
	Contests []struct {
		Title     string `json:"title"`
		TitleSlug string `json:"title_slug"`
		StartTime int64  `json:"start_time"`
	} `json:"contests"`
}

// FetchLeetCodeProblems retrieves the rated problem dataset.
func (c *Client) FetchLeetCodeProblems(ctx context.Context) ([]domain.RawLeetCodeProblem, error) {
	var problems []domain.RawLeetCodeProblem
	err := c.fetchChain(ctx, string(domain.PlatformLeetCode), c.sources.LeetCodeProblems,
		func(raw json.RawMessage) error {
			var parsed []domain.RawLeetCodeProblem
			if err := json.Unmarshal(raw, &parsed); err != nil {
				return fmt.Errorf("failed to parse problem dataset: %w", err)
			}
			if len(parsed) == 0 {
				return fmt.Errorf("empty problem dataset")
			}
			problems = parsed
			return nil
		})
	if err != nil {
		return nil, err
	}
	return problems, nil
}

// FetchLeetCodeContests retrieves the contest roster. When every candidate
// fails it falls back to a synthetic weekly roster so contest-era filtering
// stays usable.
func (c *Client) FetchLeetCodeContests(ctx context.Context) []domain.ContestInfo {
	var contests []domain.ContestInfo
	err := c.fetchChain(ctx, string(domain.PlatformLeetCode), c.sources.LeetCodeContests,
		func(raw json.RawMessage) error {
			var roster leetCodeContestRoster
			if err := json.Unmarshal(raw, &roster); err != nil {
				return fmt.Errorf("failed to parse contest roster: %w", err)
			}
			if len(roster.Contests) == 0 {
				return fmt.Errorf("empty contest roster")
			}
			contests = contests[:0]
			for i, entry := range roster.Contests {
				// 2019 itself counts as old.
				era := domain.EraOld
				if time.Unix(entry.StartTime, 0).Year() > 2019 {
					era = domain.EraNew
				}
				contests = append(contests, domain.ContestInfo{
					ID:        i + 1,
					Name:      entry.Title,
					Slug:      entry.TitleSlug,
					StartTime: entry.StartTime,
					Era:       era,
				})
			}
			return nil
		})
	if err != nil {
		log.Warn().Err(err).Msg("leetcode contest roster unavailable, using synthetic roster")
		return syntheticLeetCodeRoster()
	}
	return contests
}

// syntheticLeetCodeRoster covers weekly contests 1..100; the first half is
// treated as the old era.
func syntheticLeetCodeRoster() []domain.ContestInfo {
	roster := make([]domain.ContestInfo, 0, 100)
	for i := 1; i <= 100; i++ {
		era := domain.EraNew
		if i <= 50 {
			era = domain.EraOld
		}
		roster = append(roster, domain.ContestInfo{
			ID:   i,
			Name: fmt.Sprintf("Weekly Contest %d", i),
			Slug: fmt.Sprintf("weekly-contest-%d", i),
			Era:  era,
		})
	}
	return roster
}
