package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
	"github.com/gymrun/gymrun/internal/normalize"
)

const snapshotKey = "pool"

// Event types pushed to subscribers.
const (
	EventPoolUpdated    = "pool_updated"
	EventFiltersUpdated = "filters_updated"
)

// Event pairs a change type with the snapshot it concerns.
type Event struct {
	Type     string
	Snapshot Snapshot
}

// Fetcher supplies raw platform data. Satisfied by fetch.Client.
type Fetcher interface {
	FetchLeetCodeProblems(ctx context.Context) ([]domain.RawLeetCodeProblem, error)
	FetchLeetCodeContests(ctx context.Context) []domain.ContestInfo
	FetchCodeforcesProblems(ctx context.Context) ([]domain.RawCodeforcesProblem, error)
	FetchCodeforcesContests(ctx context.Context) (map[int]domain.ContestInfo, error)
}

// Store owns the aggregate problem pool. Loads are cached for one TTL
// window; concurrent cold loads collapse into a single upstream fetch.
type Store struct {
	fetcher Fetcher
	cache   SnapshotCache
	ttl     time.Duration
	metrics *metrics.Registry

	loadMu sync.Mutex
	last   []domain.Problem // last good pool, guarded by loadMu

	subMu sync.Mutex
	subs  []chan Event
}

// New builds a store over the given fetcher and cache.
func New(fetcher Fetcher, cache SnapshotCache, ttl time.Duration, m *metrics.Registry) *Store {
	return &Store{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

// Load returns the current aggregate snapshot, refreshing from upstream
// when the cached one has expired. It never returns an error and never an
// empty pool: when every upstream fails it serves the built-in sample set
// with the Degraded flag raised. Every call notifies subscribers exactly
// once, cache hit or not.
func (s *Store) Load(ctx context.Context) Snapshot {
	if snap, ok := s.cache.Get(ctx, snapshotKey); ok {
		s.metrics.CacheHits.Inc()
		s.notify(EventPoolUpdated, snap)
		return snap
	}
	s.metrics.CacheMisses.Inc()

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if snap, ok := s.cache.Get(ctx, snapshotKey); ok {
		s.metrics.CacheHits.Inc()
		s.notify(EventPoolUpdated, snap)
		return snap
	}

	snap := s.refresh(ctx)
	if err := s.cache.Set(ctx, snapshotKey, snap, s.ttl); err != nil {
		log.Warn().Err(err).Msg("failed to cache snapshot")
	}
	s.notify(EventPoolUpdated, snap)
	return snap
}

// NotifyFiltersChanged pushes a filters_updated event carrying the current
// snapshot. Filter state lives with the caller; the store only fans the
// change out to subscribers.
func (s *Store) NotifyFiltersChanged(ctx context.Context) {
	snap, _ := s.cache.Get(ctx, snapshotKey)
	s.notify(EventFiltersUpdated, snap)
}

// Invalidate drops the cached snapshot so the next Load refetches.
func (s *Store) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, snapshotKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate snapshot")
	}
}

// refresh fetches and normalizes both platforms concurrently.
func (s *Store) refresh(ctx context.Context) Snapshot {
	var (
		wg         sync.WaitGroup
		leetcode   []domain.Problem
		codeforces []domain.Problem
		lcErr      error
		cfErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		raw, err := s.fetcher.FetchLeetCodeProblems(ctx)
		if err != nil {
			lcErr = err
			return
		}
		contests := s.fetcher.FetchLeetCodeContests(ctx)
		leetcode = normalize.LeetCode(raw, contests)
	}()
	go func() {
		defer wg.Done()
		raw, err := s.fetcher.FetchCodeforcesProblems(ctx)
		if err != nil {
			cfErr = err
			return
		}
		contests, err := s.fetcher.FetchCodeforcesContests(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("codeforces contest list unavailable, using id heuristics")
			contests = nil
		}
		codeforces = normalize.Codeforces(raw, contests)
	}()
	wg.Wait()

	if lcErr != nil {
		log.Warn().Err(lcErr).Msg("leetcode pool unavailable")
	}
	if cfErr != nil {
		log.Warn().Err(cfErr).Msg("codeforces pool unavailable")
	}

	snap := Snapshot{FetchedAt: time.Now()}
	switch {
	case lcErr != nil && cfErr != nil && len(s.last) > 0:
		// A stale pool beats the built-in samples.
		snap.Problems = s.last
		snap.Degraded = true
		s.metrics.StoreLoads.WithLabelValues("stale").Inc()
	case lcErr != nil && cfErr != nil:
		snap.Problems = SampleProblems()
		snap.Degraded = true
		s.metrics.StoreLoads.WithLabelValues("degraded").Inc()
	default:
		snap.Problems = append(leetcode, codeforces...)
		snap.Degraded = false
		s.last = snap.Problems
		if lcErr != nil || cfErr != nil {
			s.metrics.StoreLoads.WithLabelValues("partial").Inc()
		} else {
			s.metrics.StoreLoads.WithLabelValues("ok").Inc()
		}
	}

	s.metrics.PoolSize.WithLabelValues(string(domain.PlatformLeetCode)).Set(float64(len(leetcode)))
	s.metrics.PoolSize.WithLabelValues(string(domain.PlatformCodeforces)).Set(float64(len(codeforces)))

	log.Info().Int("leetcode", len(leetcode)).Int("codeforces", len(codeforces)).
		Bool("degraded", snap.Degraded).Msg("pool refreshed")
	return snap
}

// Subscribe registers a channel that receives every store event. The
// channel is buffered; a slow consumer drops updates instead of blocking
// the store.
func (s *Store) Subscribe() <-chan Event {
	ch := make(chan Event, 4)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (s *Store) Unsubscribe(ch <-chan Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

func (s *Store) notify(typ string, snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- Event{Type: typ, Snapshot: snap}:
		default:
		}
	}
}

// Facets computes the distinct filter choices present in a pool. Tags are
// sorted; the numeric question slots ascend.
func Facets(problems []domain.Problem) domain.Facets {
	tags := make(map[string]struct{})
	contestTypes := make(map[string]struct{})
	problemTypes := make(map[string]struct{})
	eras := make(map[string]struct{})
	questions := make(map[int]struct{})

	for _, p := range problems {
		for _, t := range p.Tags {
			tags[t] = struct{}{}
		}
		if p.ContestType != "" {
			contestTypes[p.ContestType] = struct{}{}
		}
		if p.ProblemType != "" {
			problemTypes[p.ProblemType] = struct{}{}
		}
		if p.ContestEra != "" {
			eras[p.ContestEra] = struct{}{}
		}
		if p.ContestQuestionNumber > 0 {
			questions[p.ContestQuestionNumber] = struct{}{}
		}
	}

	f := domain.Facets{
		Tags:            sortedKeys(tags),
		ContestTypes:    sortedKeys(contestTypes),
		ProblemTypes:    sortedKeys(problemTypes),
		ContestEras:     sortedKeys(eras),
		QuestionNumbers: make([]int, 0, len(questions)),
	}
	for q := range questions {
		f.QuestionNumbers = append(f.QuestionNumbers, q)
	}
	sort.Ints(f.QuestionNumbers)
	return f
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
