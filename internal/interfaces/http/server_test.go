package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymrun/gymrun/internal/config"
	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
	"github.com/gymrun/gymrun/internal/store"
	"github.com/gymrun/gymrun/internal/train"
	"github.com/gymrun/gymrun/internal/verify"
)

type staticFetcher struct{}

func (staticFetcher) FetchLeetCodeProblems(context.Context) ([]domain.RawLeetCodeProblem, error) {
	return []domain.RawLeetCodeProblem{
		{ID: 1, Rating: 900, Title: "Two Sum", TitleSlug: "two-sum"},
		{ID: 42, Rating: 2100, Title: "Trapping Rain Water", TitleSlug: "trapping-rain-water"},
	}, nil
}

func (staticFetcher) FetchLeetCodeContests(context.Context) []domain.ContestInfo { return nil }

func (staticFetcher) FetchCodeforcesProblems(context.Context) ([]domain.RawCodeforcesProblem, error) {
	return []domain.RawCodeforcesProblem{
		{ContestID: 1700, Index: "A", Name: "Alice", Type: "PROGRAMMING", Rating: 800, Tags: []string{"greedy"}},
		{ContestID: 1700, Index: "B", Name: "Bob", Type: "PROGRAMMING", Rating: 850},
		{ContestID: 1699, Index: "A", Name: "Carol", Type: "PROGRAMMING", Rating: 800},
		{ContestID: 1698, Index: "A", Name: "Dave", Type: "PROGRAMMING", Rating: 800},
		{ContestID: 1697, Index: "A", Name: "Eve", Type: "PROGRAMMING", Rating: 800},
	}, nil
}

func (staticFetcher) FetchCodeforcesContests(context.Context) (map[int]domain.ContestInfo, error) {
	return nil, fmt.Errorf("unavailable")
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	reg := metrics.NewRegistry(prometheus.NewRegistry())
	st := store.New(staticFetcher{}, store.NewMemoryCache(), time.Minute, reg)
	gen := train.NewGenerator(rand.NewSource(1), reg)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "user.status"):
			fmt.Fprint(w, `{"status": "OK", "result": [
				{"id": 1, "contestId": 1700, "creationTimeSeconds": 9999999999, "verdict": "OK",
				 "problem": {"contestId": 1700, "index": "A", "name": "Alice", "rating": 800}}
			]}`)
		case strings.Contains(r.URL.Path, "user.info"):
			fmt.Fprint(w, `{"status": "OK", "result": [{"handle": "tourist", "rank": "legendary grandmaster", "rating": 3800, "maxRating": 4000}]}`)
		default:
			fmt.Fprint(w, `{"totalSolved": 10, "easySolved": 5, "mediumSolved": 3, "hardSolved": 2}`)
		}
	}))
	t.Cleanup(upstream.Close)

	checker := verify.NewHTTPChecker(config.VerifyConfig{
		Window:          24 * time.Hour,
		SubmissionCount: 1000,
		LeetCodeMirror:  upstream.URL,
		CodeforcesAPI:   upstream.URL,
	})
	sess := train.NewSession(2*time.Hour, 100, checker.Check, reg)
	t.Cleanup(sess.Stop)

	srv, err := NewServer(config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  5 * time.Second,
	}, st, gen, sess, checker)
	require.NoError(t, err)

	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)
	return srv, api
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHealth(t *testing.T) {
	_, api := newTestServer(t)

	var body map[string]interface{}
	resp := getJSON(t, api.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(7), body["problems"])
	assert.Equal(t, false, body["degraded"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestProblems_Pagination(t *testing.T) {
	_, api := newTestServer(t)

	var body struct {
		Problems []domain.Problem `json:"problems"`
		Total    int              `json:"total"`
	}
	getJSON(t, api.URL+"/problems?page=1&per_page=3", &body)

	assert.Equal(t, 7, body.Total)
	assert.Len(t, body.Problems, 3)

	getJSON(t, api.URL+"/problems?page=3&per_page=3", &body)
	assert.Len(t, body.Problems, 1)
}

func TestFilters_UpdateNarrowsProblems(t *testing.T) {
	_, api := newTestServer(t)

	platform := string(domain.PlatformLeetCode)
	var filters domain.Filters
	resp := doJSON(t, http.MethodPut, api.URL+"/filters", domain.FilterPatch{Platform: &platform}, &filters)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, platform, filters.Platform)

	var body struct {
		Total int `json:"total"`
	}
	getJSON(t, api.URL+"/problems", &body)
	assert.Equal(t, 2, body.Total)
}

func TestFilters_BadPatch(t *testing.T) {
	_, api := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, api.URL+"/filters", strings.NewReader("{bad"))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTags_Update(t *testing.T) {
	_, api := newTestServer(t)

	var filters domain.Filters
	doJSON(t, http.MethodPut, api.URL+"/tags", map[string][]string{"tags": {"greedy", "greedy"}}, &filters)
	assert.Equal(t, []string{"greedy"}, filters.Tags)

	var body struct {
		Total int `json:"total"`
	}
	getJSON(t, api.URL+"/problems", &body)
	assert.Equal(t, 1, body.Total)
}

func TestFacets(t *testing.T) {
	_, api := newTestServer(t)

	var facets domain.Facets
	getJSON(t, api.URL+"/facets", &facets)

	assert.Contains(t, facets.Tags, "greedy")
	assert.Contains(t, facets.ContestEras, domain.EraNew)
}

func TestTraining_GenerateAndSolve(t *testing.T) {
	_, api := newTestServer(t)

	var status train.Status
	resp := doJSON(t, http.MethodPost, api.URL+"/training/generate",
		map[string]interface{}{"platform": "codeforces", "level": 1}, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, train.StateRunning, status.State)
	assert.Len(t, status.Set.Problems, 4)
	assert.Equal(t, 7200, status.Remaining)

	resp = doJSON(t, http.MethodPost, api.URL+"/training/pause", nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, train.StatePaused, status.State)

	resp = doJSON(t, http.MethodPost, api.URL+"/training/resume", nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, train.StateRunning, status.State)

	// 1700A is in every level-1 set candidate pool; solve it if present.
	var target string
	for _, p := range status.Set.Problems {
		if p.ID == "codeforces-1700A" {
			target = p.ID
		}
	}
	if target != "" {
		var solved struct {
			Verified bool         `json:"verified"`
			Session  train.Status `json:"session"`
		}
		resp = doJSON(t, http.MethodPost, api.URL+"/training/solved",
			map[string]string{"problemId": target, "handle": "tourist"}, &solved)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, solved.Verified)
		assert.Equal(t, 100, solved.Session.Score)

		resp = doJSON(t, http.MethodPost, api.URL+"/training/solved",
			map[string]string{"problemId": target, "handle": "tourist"}, nil)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, api.URL+"/training/stop", nil, &status)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, train.StateIdle, status.State)
}

func TestTraining_GenerateInvalid(t *testing.T) {
	_, api := newTestServer(t)

	resp := doJSON(t, http.MethodPost, api.URL+"/training/generate",
		map[string]interface{}{"platform": "atcoder", "level": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, api.URL+"/training/generate",
		map[string]interface{}{"platform": "codeforces", "level": 500}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTraining_PauseWithoutSession(t *testing.T) {
	_, api := newTestServer(t)

	resp := doJSON(t, http.MethodPost, api.URL+"/training/pause", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStats(t *testing.T) {
	_, api := newTestServer(t)

	var stats verify.UserStats
	resp := getJSON(t, api.URL+"/stats?leetcode=alice&codeforces=tourist", &stats)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, stats.LeetCode)
	assert.Equal(t, 10, stats.LeetCode.TotalSolved)
	require.NotNil(t, stats.Codeforces)
	assert.Equal(t, "tourist", stats.Codeforces.User.Handle)
	assert.Equal(t, 1, stats.Codeforces.Performance.Total)

	resp = getJSON(t, api.URL+"/stats", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCodeforcesStatsRoute(t *testing.T) {
	_, api := newTestServer(t)

	var stats verify.CodeforcesStats
	resp := getJSON(t, api.URL+"/stats/codeforces/tourist", &stats)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "tourist", stats.User.Handle)
}

func TestNotFound(t *testing.T) {
	_, api := newTestServer(t)

	resp := getJSON(t, api.URL+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, api := newTestServer(t)

	resp, err := http.Get(api.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func dialWebSocket(t *testing.T, api *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(api.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Give the handler a moment to register its subscription.
	time.Sleep(50 * time.Millisecond)
	return conn
}

func TestWebSocket_PoolEvents(t *testing.T) {
	_, api := newTestServer(t)
	conn := dialWebSocket(t, api)

	// A reload forces a fresh snapshot, which is pushed to subscribers.
	resp := doJSON(t, http.MethodPost, api.URL+"/reload", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var event streamEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "pool_updated", event.Type)
	assert.Equal(t, 7, event.Problems)
	assert.False(t, event.Degraded)
}

func TestWebSocket_FilterEvents(t *testing.T) {
	_, api := newTestServer(t)
	conn := dialWebSocket(t, api)

	platform := string(domain.PlatformCodeforces)
	resp := doJSON(t, http.MethodPut, api.URL+"/filters", domain.FilterPatch{Platform: &platform}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var event streamEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "filters_updated", event.Type)

	doJSON(t, http.MethodPut, api.URL+"/tags", map[string][]string{"tags": {"greedy"}}, nil)

	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "filters_updated", event.Type)
}
