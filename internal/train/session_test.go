package train

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
)

func acceptAll(context.Context, domain.Problem, string) (bool, error) { return true, nil }

func rejectAll(context.Context, domain.Problem, string) (bool, error) { return false, nil }

func newTestSession(t *testing.T, checker SolveChecker) *Session {
	t.Helper()
	s := NewSession(2*time.Hour, 100, checker, metrics.NewRegistry(prometheus.NewRegistry()))
	t.Cleanup(s.Stop)
	return s
}

func testSet() Set {
	return Set{
		Platform: domain.PlatformCodeforces,
		Level:    1,
		Problems: []domain.Problem{
			{ID: "codeforces-1A", Platform: domain.PlatformCodeforces, Rating: 800},
			{ID: "codeforces-2A", Platform: domain.PlatformCodeforces, Rating: 800},
		},
	}
}

func TestSession_Lifecycle(t *testing.T) {
	s := newTestSession(t, acceptAll)
	assert.Equal(t, StateIdle, s.Snapshot().State)

	require.NoError(t, s.Start(testSet()))
	assert.Equal(t, StateRunning, s.Snapshot().State)
	assert.Equal(t, 7200, s.Snapshot().Remaining)

	require.NoError(t, s.Pause())
	assert.Equal(t, StatePaused, s.Snapshot().State)

	// Paused sessions do not count down.
	s.tick()
	assert.Equal(t, 7200, s.Snapshot().Remaining)

	require.NoError(t, s.Resume())
	s.tick()
	assert.Equal(t, 7199, s.Snapshot().Remaining)

	// Stop forcibly resets to idle.
	s.Stop()
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, 0, snap.Score)
	assert.Empty(t, snap.Set.Problems)
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := newTestSession(t, acceptAll)

	assert.Error(t, s.Pause())
	assert.Error(t, s.Resume())
	assert.Error(t, s.Start(Set{}))
}

func TestSession_ExpiresAfterFullCountdown(t *testing.T) {
	s := newTestSession(t, acceptAll)
	require.NoError(t, s.Start(testSet()))

	for i := 0; i < 7200; i++ {
		s.tick()
	}

	snap := s.Snapshot()
	assert.Equal(t, StateExpired, snap.State)
	assert.Equal(t, 0, snap.Remaining)

	// Extra ticks after expiry are inert.
	s.tick()
	assert.Equal(t, StateExpired, s.Snapshot().State)
}

func TestSession_MarkSolvedAwardsOnce(t *testing.T) {
	s := newTestSession(t, acceptAll)
	require.NoError(t, s.Start(testSet()))

	ok, err := s.MarkSolved(context.Background(), "codeforces-1A", "tourist")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, s.Snapshot().Score)

	_, err = s.MarkSolved(context.Background(), "codeforces-1A", "tourist")
	assert.ErrorIs(t, err, ErrAlreadySolved)
	assert.Equal(t, 100, s.Snapshot().Score)

	ok, err = s.MarkSolved(context.Background(), "codeforces-2A", "tourist")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 200, s.Snapshot().Score)
	assert.ElementsMatch(t, []string{"codeforces-1A", "codeforces-2A"}, s.Snapshot().Solved)
}

func TestSession_MarkSolvedRejected(t *testing.T) {
	s := newTestSession(t, rejectAll)
	require.NoError(t, s.Start(testSet()))

	ok, err := s.MarkSolved(context.Background(), "codeforces-1A", "tourist")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Snapshot().Score)
}

func TestSession_MarkSolvedCheckerError(t *testing.T) {
	boom := errors.New("upstream down")
	s := newTestSession(t, func(context.Context, domain.Problem, string) (bool, error) {
		return false, boom
	})
	require.NoError(t, s.Start(testSet()))

	_, err := s.MarkSolved(context.Background(), "codeforces-1A", "tourist")
	assert.ErrorIs(t, err, boom)
}

func TestSession_MarkSolvedAfterExpiry(t *testing.T) {
	s := newTestSession(t, acceptAll)
	require.NoError(t, s.Start(testSet()))

	for i := 0; i < 7200; i++ {
		s.tick()
	}
	require.Equal(t, StateExpired, s.Snapshot().State)

	ok, err := s.MarkSolved(context.Background(), "codeforces-1A", "tourist")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, s.Snapshot().Score)
}

func TestSession_UnknownProblem(t *testing.T) {
	s := newTestSession(t, acceptAll)
	require.NoError(t, s.Start(testSet()))

	_, err := s.MarkSolved(context.Background(), "codeforces-9Z", "tourist")
	assert.ErrorIs(t, err, ErrNoActiveSet)
}

func TestSession_StartResets(t *testing.T) {
	s := newTestSession(t, acceptAll)
	require.NoError(t, s.Start(testSet()))

	_, err := s.MarkSolved(context.Background(), "codeforces-1A", "tourist")
	require.NoError(t, err)

	require.NoError(t, s.Start(testSet()))
	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Score)
	assert.Empty(t, snap.Solved)
	assert.Equal(t, 7200, snap.Remaining)
}
