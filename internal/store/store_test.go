package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
)

type fakeFetcher struct {
	mu       sync.Mutex
	lcCalls  int
	cfCalls  int
	lcErr    error
	cfErr    error
	leetcode []domain.RawLeetCodeProblem
	cforces  []domain.RawCodeforcesProblem
}

func (f *fakeFetcher) FetchLeetCodeProblems(context.Context) ([]domain.RawLeetCodeProblem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lcCalls++
	if f.lcErr != nil {
		return nil, f.lcErr
	}
	return f.leetcode, nil
}

func (f *fakeFetcher) FetchLeetCodeContests(context.Context) []domain.ContestInfo {
	return nil
}

func (f *fakeFetcher) FetchCodeforcesProblems(context.Context) ([]domain.RawCodeforcesProblem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfCalls++
	if f.cfErr != nil {
		return nil, f.cfErr
	}
	return f.cforces, nil
}

func (f *fakeFetcher) FetchCodeforcesContests(context.Context) (map[int]domain.ContestInfo, error) {
	return nil, errors.New("unavailable")
}

func newTestStore(f *fakeFetcher, ttl time.Duration) *Store {
	return New(f, NewMemoryCache(), ttl, metrics.NewRegistry(prometheus.NewRegistry()))
}

func TestLoad_SingleFetchPerWindow(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "two-sum", Title: "Two Sum"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "Theatre Square", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)

	first := s.Load(context.Background())
	second := s.Load(context.Background())

	assert.Equal(t, 1, f.lcCalls)
	assert.Equal(t, 1, f.cfCalls)
	assert.Equal(t, first.FetchedAt, second.FetchedAt)
	assert.Len(t, first.Problems, 2)
	assert.False(t, first.Degraded)
}

func TestLoad_ConcurrentColdLoadsCollapse(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Load(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.lcCalls)
	assert.Equal(t, 1, f.cfCalls)
}

func TestLoad_ExpiryRefetches(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, 10*time.Millisecond)

	s.Load(context.Background())
	time.Sleep(25 * time.Millisecond)
	s.Load(context.Background())

	assert.Equal(t, 2, f.lcCalls)
}

func TestLoad_BothFailServesSample(t *testing.T) {
	f := &fakeFetcher{lcErr: errors.New("down"), cfErr: errors.New("down")}
	s := newTestStore(f, time.Minute)

	snap := s.Load(context.Background())

	assert.True(t, snap.Degraded)
	assert.GreaterOrEqual(t, len(snap.Problems), 5)
}

func TestLoad_BothFailPrefersStalePool(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)

	fresh := s.Load(context.Background())
	require.Len(t, fresh.Problems, 2)

	f.mu.Lock()
	f.lcErr = errors.New("down")
	f.cfErr = errors.New("down")
	f.mu.Unlock()
	s.Invalidate(context.Background())

	snap := s.Load(context.Background())

	assert.True(t, snap.Degraded)
	assert.Equal(t, fresh.Problems, snap.Problems)
}

func TestLoad_PartialFailureKeepsSurvivor(t *testing.T) {
	f := &fakeFetcher{
		lcErr:   errors.New("down"),
		cforces: []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)

	snap := s.Load(context.Background())

	assert.False(t, snap.Degraded)
	require.Len(t, snap.Problems, 1)
	assert.Equal(t, domain.PlatformCodeforces, snap.Problems[0].Platform)
}

func TestInvalidate(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)

	s.Load(context.Background())
	s.Invalidate(context.Background())
	s.Load(context.Background())

	assert.Equal(t, 2, f.lcCalls)
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)

	ch := s.Subscribe()
	s.Load(context.Background())

	select {
	case evt := <-ch:
		assert.Equal(t, EventPoolUpdated, evt.Type)
		assert.Len(t, evt.Snapshot.Problems, 2)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}

	s.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestSubscribe_EveryLoadNotifies(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)
	ch := s.Subscribe()

	// Second call is a cache hit and still produces an event.
	s.Load(context.Background())
	s.Load(context.Background())

	for i := 0; i < 2; i++ {
		select {
		case evt := <-ch:
			assert.Equal(t, EventPoolUpdated, evt.Type)
		case <-time.After(time.Second):
			t.Fatalf("event %d not delivered", i)
		}
	}
	assert.Equal(t, 1, f.lcCalls)
}

func TestNotifyFiltersChanged(t *testing.T) {
	f := &fakeFetcher{
		leetcode: []domain.RawLeetCodeProblem{{ID: 1, Rating: 900, TitleSlug: "a"}},
		cforces:  []domain.RawCodeforcesProblem{{ContestID: 1, Index: "A", Name: "x", Rating: 1000}},
	}
	s := newTestStore(f, time.Minute)
	s.Load(context.Background())

	ch := s.Subscribe()
	s.NotifyFiltersChanged(context.Background())

	select {
	case evt := <-ch:
		assert.Equal(t, EventFiltersUpdated, evt.Type)
		assert.Len(t, evt.Snapshot.Problems, 2)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", Snapshot{Degraded: true}, 20*time.Millisecond))

	snap, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.True(t, snap.Degraded)

	time.Sleep(35 * time.Millisecond)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestFacets(t *testing.T) {
	facets := Facets(SampleProblems())

	assert.Contains(t, facets.Tags, "Array")
	assert.Contains(t, facets.ContestTypes, domain.ContestDiv4)
	assert.Equal(t, []string{domain.EraNew, domain.EraOld}, facets.ContestEras)
	assert.Equal(t, []int{1, 2, 4}, facets.QuestionNumbers)
	assert.Equal(t, []string{"A", "D"}, facets.ProblemTypes)
}
