// Package normalize converts raw platform payloads into the unified
// Problem model. Entries without a native key are dropped and counted,
// never half-filled.
package normalize

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/classify"
	"github.com/gymrun/gymrun/internal/domain"
)

// LeetCode converts the rated dataset into unified problems. The contest
// roster, when available, supplies contest names and eras by slug.
func LeetCode(raw []domain.RawLeetCodeProblem, contests []domain.ContestInfo) []domain.Problem {
	bySlug := make(map[string]domain.ContestInfo, len(contests))
	for _, c := range contests {
		bySlug[c.Slug] = c
	}

	// Contest slots are ranked by rating within each contest.
	ratingsByContest := make(map[string]map[int]int)
	for _, r := range raw {
		if r.ContestSlug == "" || r.ID == 0 {
			continue
		}
		if ratingsByContest[r.ContestSlug] == nil {
			ratingsByContest[r.ContestSlug] = make(map[int]int)
		}
		ratingsByContest[r.ContestSlug][r.ID] = int(r.Rating)
	}
	ordinalsByContest := make(map[string]map[int]int, len(ratingsByContest))
	for slug, ratings := range ratingsByContest {
		ordinalsByContest[slug] = classify.QuestionOrdinals(ratings)
	}

	problems := make([]domain.Problem, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		if r.ID == 0 {
			skipped++
			continue
		}

		rating := int(r.Rating)
		tier := classify.DifficultyTier(rating)

		title := r.Title
		if title == "" {
			title = TitleFromSlug(r.TitleSlug)
		}

		ordinal := classify.QuestionOrdinalFromRating(rating)
		if o, ok := ordinalsByContest[r.ContestSlug][r.ID]; ok {
			ordinal = o
		}

		p := domain.Problem{
			ID:                    domain.ProblemID(domain.PlatformLeetCode, strconv.Itoa(r.ID)),
			Title:                 title,
			Platform:              domain.PlatformLeetCode,
			Difficulty:            tier,
			Rating:                rating,
			Tags:                  classify.InferTags(r.TitleSlug, rating, tier),
			URL:                   "https://leetcode.com/problems/" + url.PathEscape(r.TitleSlug) + "/",
			ContestEra:            classify.LeetCodeEra(r.ContestID, rating),
			ContestQuestionNumber: ordinal,
		}
		if r.ContestID > 0 {
			p.ContestID = strconv.Itoa(r.ContestID)
		}
		if c, ok := bySlug[r.ContestSlug]; ok {
			p.ContestName = c.Name
			if c.Era != "" {
				p.ContestEra = c.Era
			}
		}
		problems = append(problems, p)
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("leetcode entries dropped for missing id")
	}
	return problems
}

// Codeforces converts problemset entries into unified problems. The
// contest list, when available, supplies contest names for division
// detection; otherwise the contest id decides.
func Codeforces(raw []domain.RawCodeforcesProblem, contests map[int]domain.ContestInfo) []domain.Problem {
	problems := make([]domain.Problem, 0, len(raw))
	skipped := 0
	for _, r := range raw {
		if r.ContestID == 0 || r.Index == "" {
			skipped++
			continue
		}

		// Codeforces difficulty is the numeric rating as a string; the
		// categorical tiers belong to LeetCode.
		difficulty := "Unrated"
		if r.Rating > 0 {
			difficulty = strconv.Itoa(r.Rating)
		}

		contestType := domain.ContestOther
		contestName := ""
		if c, ok := contests[r.ContestID]; ok {
			contestName = c.Name
			contestType = classify.ContestTypeFromName(c.Name)
		}
		if contestType == domain.ContestOther {
			contestType = classify.ContestTypeFromID(r.ContestID)
		}

		nativeKey := fmt.Sprintf("%d%s", r.ContestID, r.Index)
		problems = append(problems, domain.Problem{
			ID:         domain.ProblemID(domain.PlatformCodeforces, nativeKey),
			Title:      fmt.Sprintf("%s. %s", r.Index, r.Name),
			Platform:   domain.PlatformCodeforces,
			Difficulty: difficulty,
			Rating:     r.Rating,
			Tags:       classify.Dedupe(r.Tags),
			URL: fmt.Sprintf("https://codeforces.com/problemset/problem/%d/%s",
				r.ContestID, url.PathEscape(r.Index)),
			SolvedCount: r.SolvedCount,
			ContestID:   strconv.Itoa(r.ContestID),
			ContestName: contestName,
			ContestType: contestType,
			ProblemType: r.Index[:1],
			ContestEra:  classify.CodeforcesEra(r.ContestID),
		})
	}

	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("codeforces entries dropped for missing key")
	}
	return problems
}

// TitleFromSlug turns a kebab-case slug into a display title.
func TitleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
