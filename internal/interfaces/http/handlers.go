package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/classify"
	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/store"
	"github.com/gymrun/gymrun/internal/train"
)

const defaultPageSize = 50

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) currentFilters() domain.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"problems":  len(snap.Problems),
		"degraded":  snap.Degraded,
		"fetchedAt": snap.FetchedAt,
	})
}

func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load(r.Context())
	filtered := store.Filter(snap.Problems, s.currentFilters())

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", defaultPageSize)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 500 {
		perPage = defaultPageSize
	}

	start := (page - 1) * perPage
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + perPage
	if end > len(filtered) {
		end = len(filtered)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"problems": filtered[start:end],
		"total":    len(filtered),
		"page":     page,
		"perPage":  perPage,
		"degraded": snap.Degraded,
	})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Load(r.Context())
	writeJSON(w, http.StatusOK, store.Facets(snap.Problems))
}

func (s *Server) handleGetFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.currentFilters())
}

func (s *Server) handleUpdateFilters(w http.ResponseWriter, r *http.Request) {
	var patch domain.FilterPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter patch")
		return
	}

	s.mu.Lock()
	s.filters = s.filters.Apply(patch)
	filters := s.filters
	s.mu.Unlock()

	s.store.NotifyFiltersChanged(r.Context())
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) handleUpdateTags(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid tags payload")
		return
	}

	s.mu.Lock()
	s.filters.Tags = classify.Dedupe(body.Tags)
	filters := s.filters
	s.mu.Unlock()

	s.store.NotifyFiltersChanged(r.Context())
	writeJSON(w, http.StatusOK, filters)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.store.Invalidate(r.Context())
	snap := s.store.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"problems": len(snap.Problems),
		"degraded": snap.Degraded,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filters := s.currentFilters()
	leetcodeHandle := r.URL.Query().Get("leetcode")
	codeforcesHandle := r.URL.Query().Get("codeforces")
	if leetcodeHandle == "" {
		leetcodeHandle = filters.LeetCodeHandle
	}
	if codeforcesHandle == "" {
		codeforcesHandle = filters.CodeforcesHandle
	}
	if leetcodeHandle == "" && codeforcesHandle == "" {
		writeError(w, http.StatusBadRequest, "no handle provided")
		return
	}

	stats, err := s.checker.FetchUserStats(r.Context(), leetcodeHandle, codeforcesHandle)
	if err != nil {
		log.Warn().Err(err).Msg("user stats fetch failed")
		writeError(w, http.StatusBadGateway, "failed to fetch user statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCodeforcesStats(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	stats, err := s.checker.FetchUserStats(r.Context(), "", handle)
	if err != nil {
		log.Warn().Err(err).Str("handle", handle).Msg("codeforces stats fetch failed")
		writeError(w, http.StatusBadGateway, "failed to fetch user statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats.Codeforces)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform string `json:"platform"`
		Level    int    `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid generate payload")
		return
	}

	platform := domain.Platform(body.Platform)
	if !platform.Valid() {
		writeError(w, http.StatusBadRequest, "unknown platform")
		return
	}

	snap := s.store.Load(r.Context())
	set, err := s.generator.Generate(snap.Problems, platform, body.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(set.Problems) == 0 {
		writeError(w, http.StatusConflict, "no problems available for this level")
		return
	}

	if err := s.session.Start(set); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.Pause(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	if err := s.session.Resume(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.session.Stop()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSolved(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProblemID string `json:"problemId"`
		Handle    string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProblemID == "" {
		writeError(w, http.StatusBadRequest, "invalid solved payload")
		return
	}

	handle := body.Handle
	if handle == "" {
		filters := s.currentFilters()
		if p, ok := platformOf(body.ProblemID); ok && p == domain.PlatformLeetCode {
			handle = filters.LeetCodeHandle
		} else {
			handle = filters.CodeforcesHandle
		}
	}
	if handle == "" {
		writeError(w, http.StatusBadRequest, "no handle provided")
		return
	}

	awarded, err := s.session.MarkSolved(r.Context(), body.ProblemID, handle)
	if err != nil {
		switch err {
		case train.ErrAlreadySolved:
			writeError(w, http.StatusConflict, err.Error())
		case train.ErrNoActiveSet:
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"verified": awarded,
		"session":  s.session.Snapshot(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusNotFound, "not found")
}

func platformOf(problemID string) (domain.Platform, bool) {
	for _, p := range []domain.Platform{domain.PlatformLeetCode, domain.PlatformCodeforces} {
		if len(problemID) > len(p) && problemID[:len(p)] == string(p) {
			return p, true
		}
	}
	return "", false
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
