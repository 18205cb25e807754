// Package verify confirms solves against upstream submission history and
// computes per-user performance statistics.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/config"
	"github.com/gymrun/gymrun/internal/domain"
)

// Checker decides whether a handle has a recent accepted submission for a
// problem.
type Checker interface {
	Check(ctx context.Context, p domain.Problem, handle string) (bool, error)
}

// HTTPChecker verifies against the live platform APIs.
type HTTPChecker struct {
	http *http.Client
	cfg  config.VerifyConfig
	now  func() time.Time
}

// NewHTTPChecker builds a checker from the verify configuration.
func NewHTTPChecker(cfg config.VerifyConfig) *HTTPChecker {
	return &HTTPChecker{
		http: &http.Client{Timeout: 10 * time.Second},
		cfg:  cfg,
		now:  time.Now,
	}
}

// Check dispatches on the problem's platform.
func (c *HTTPChecker) Check(ctx context.Context, p domain.Problem, handle string) (bool, error) {
	if handle == "" {
		return false, fmt.Errorf("empty handle")
	}

	switch p.Platform {
	case domain.PlatformCodeforces:
		contestID, index, err := CodeforcesRef(p)
		if err != nil {
			return false, err
		}
		return c.checkCodeforces(ctx, contestID, index, handle)
	case domain.PlatformLeetCode:
		slug, err := LeetCodeSlug(p)
		if err != nil {
			return false, err
		}
		return c.checkLeetCode(ctx, slug, handle)
	default:
		return false, fmt.Errorf("unknown platform %q", p.Platform)
	}
}

type codeforcesStatusResponse struct {
	Status  string                 `json:"status"`
	Result  []CodeforcesSubmission `json:"result"`
	Comment string                 `json:"comment"`
}

func (c *HTTPChecker) checkCodeforces(ctx context.Context, contestID int, index, handle string) (bool, error) {
	endpoint := fmt.Sprintf("%s/user.status?handle=%s&from=1&count=%d",
		c.cfg.CodeforcesAPI, url.QueryEscape(handle), c.cfg.SubmissionCount)

	var resp codeforcesStatusResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return false, err
	}
	if resp.Status != "OK" {
		return false, fmt.Errorf("API error: %s", resp.Comment)
	}

	cutoff := c.now().Add(-c.cfg.Window).Unix()
	for _, sub := range resp.Result {
		if sub.Problem.ContestID == contestID &&
			sub.Problem.Index == index &&
			sub.Verdict == "OK" &&
			sub.CreationTimeSeconds >= cutoff {
			log.Debug().Int("submission", sub.ID).Str("handle", handle).
				Msg("codeforces solve verified")
			return true, nil
		}
	}
	return false, nil
}

type leetCodeSubmissionsResponse struct {
	Submissions []struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		TitleSlug string `json:"titleSlug"`
		Status    string `json:"status"`
		Timestamp int64  `json:"timestamp"` // milliseconds
	} `json:"submissions"`
}

func (c *HTTPChecker) checkLeetCode(ctx context.Context, slug, handle string) (bool, error) {
	endpoint := fmt.Sprintf("%s/%s/submissions", c.cfg.LeetCodeMirror, url.PathEscape(handle))

	var resp leetCodeSubmissionsResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return false, err
	}

	cutoff := c.now().Add(-c.cfg.Window).UnixMilli()
	for _, sub := range resp.Submissions {
		if sub.TitleSlug == slug && sub.Status == "ac" && sub.Timestamp >= cutoff {
			log.Debug().Int64("submission", sub.ID).Str("handle", handle).
				Msg("leetcode solve verified")
			return true, nil
		}
	}
	return false, nil
}

func (c *HTTPChecker) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var codeforcesURLPattern = regexp.MustCompile(`problem/(\d+)/([A-Z][0-9]?)`)

// CodeforcesRef extracts the contest id and problem index from a unified
// problem. The contest id field is authoritative; the index comes from the
// canonical id, falling back to the URL.
func CodeforcesRef(p domain.Problem) (int, string, error) {
	contestID, err := strconv.Atoi(p.ContestID)
	if err != nil || contestID == 0 {
		return 0, "", fmt.Errorf("problem %s has no contest id", p.ID)
	}

	nativeKey := strings.TrimPrefix(p.ID, string(domain.PlatformCodeforces)+"-")
	if index := strings.TrimPrefix(nativeKey, p.ContestID); index != "" && index != nativeKey {
		return contestID, index, nil
	}

	if m := codeforcesURLPattern.FindStringSubmatch(p.URL); m != nil {
		return contestID, m[2], nil
	}
	return 0, "", fmt.Errorf("cannot derive problem index for %s", p.ID)
}

var slugCleanPattern = regexp.MustCompile(`[^a-z0-9]+`)

// LeetCodeSlug extracts the title slug from a unified problem, preferring
// the URL over a re-slugged title.
func LeetCodeSlug(p domain.Problem) (string, error) {
	const marker = "/problems/"
	if i := strings.Index(p.URL, marker); i >= 0 {
		slug := strings.Trim(p.URL[i+len(marker):], "/")
		if slug != "" {
			return slug, nil
		}
	}
	if p.Title != "" {
		slug := slugCleanPattern.ReplaceAllString(strings.ToLower(p.Title), "-")
		return strings.Trim(slug, "-"), nil
	}
	return "", fmt.Errorf("cannot derive title slug for %s", p.ID)
}
