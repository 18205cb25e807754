package train

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gymrun/gymrun/internal/domain"
	"github.com/gymrun/gymrun/internal/metrics"
)

// Session states.
const (
	StateIdle    = "idle"
	StateRunning = "running"
	StatePaused  = "paused"
	StateExpired = "expired"
)

// ErrNoActiveSet is returned when solve marking happens without a set.
var ErrNoActiveSet = errors.New("no active problem set")

// ErrAlreadySolved is returned when a problem is marked a second time.
var ErrAlreadySolved = errors.New("problem already marked solved")

// SolveChecker verifies that the handle has an accepted submission for the
// problem. Implemented by the verify package.
type SolveChecker func(ctx context.Context, p domain.Problem, handle string) (bool, error)

// Session is one timed training run over a generated set. Scoring is
// verification-gated: a solve only counts once the checker confirms an
// accepted upstream submission. Marking stays allowed after expiry so late
// verification still lands.
type Session struct {
	duration time.Duration
	points   int
	checker  SolveChecker
	metrics  *metrics.Registry

	mu        sync.Mutex
	state     string
	set       Set
	remaining time.Duration
	score     int
	solved    map[string]bool
	cancel    context.CancelFunc
}

// NewSession builds an idle session.
func NewSession(duration time.Duration, pointsPerSolve int, checker SolveChecker, m *metrics.Registry) *Session {
	return &Session{
		duration: duration,
		points:   pointsPerSolve,
		checker:  checker,
		metrics:  m,
		state:    StateIdle,
		solved:   make(map[string]bool),
	}
}

// Start loads a set and begins the countdown, resetting any previous run.
func (s *Session) Start(set Set) error {
	if len(set.Problems) == 0 {
		return ErrNoActiveSet
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state == StateRunning || s.state == StatePaused {
		s.metrics.SessionsActive.Dec()
	}
	s.set = set
	s.state = StateRunning
	s.remaining = s.duration
	s.score = 0
	s.solved = make(map[string]bool)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.metrics.SessionsActive.Inc()
	go s.run(ctx)

	log.Info().Str("platform", string(set.Platform)).Int("level", set.Level).
		Int("problems", len(set.Problems)).Msg("training session started")
	return nil
}

func (s *Session) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.tick() {
				return
			}
		}
	}
}

// tick advances the countdown by one second and reports whether the
// session just expired.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return false
	}
	s.remaining -= time.Second
	if s.remaining > 0 {
		return false
	}
	s.remaining = 0
	s.state = StateExpired
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.metrics.SessionsActive.Dec()
	log.Info().Int("score", s.score).Msg("training session expired")
	return true
}

// Pause suspends the countdown.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return fmt.Errorf("cannot pause session in state %s", s.state)
	}
	s.state = StatePaused
	return nil
}

// Resume restarts a paused countdown.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return fmt.Errorf("cannot resume session in state %s", s.state)
	}
	s.state = StateRunning
	return nil
}

// Stop forcibly resets the session to idle, discarding the set and score.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state == StateRunning || s.state == StatePaused {
		s.metrics.SessionsActive.Dec()
	}
	s.state = StateIdle
	s.set = Set{}
	s.remaining = 0
	s.score = 0
	s.solved = make(map[string]bool)
}

// MarkSolved verifies and records a solve, awarding points exactly once
// per problem.
func (s *Session) MarkSolved(ctx context.Context, problemID, handle string) (bool, error) {
	s.mu.Lock()
	var problem domain.Problem
	found := false
	for _, p := range s.set.Problems {
		if p.ID == problemID {
			problem = p
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return false, ErrNoActiveSet
	}
	if s.solved[problemID] {
		s.mu.Unlock()
		return false, ErrAlreadySolved
	}
	s.mu.Unlock()

	// Verification happens outside the lock; upstream calls are slow.
	accepted, err := s.checker(ctx, problem, handle)
	if err != nil {
		s.metrics.SolvesVerified.WithLabelValues(string(problem.Platform), "error").Inc()
		return false, err
	}
	if !accepted {
		s.metrics.SolvesVerified.WithLabelValues(string(problem.Platform), "rejected").Inc()
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solved[problemID] {
		return false, ErrAlreadySolved
	}
	s.solved[problemID] = true
	s.score += s.points
	s.metrics.SolvesVerified.WithLabelValues(string(problem.Platform), "accepted").Inc()
	return true, nil
}

// Status is a point-in-time view of the session.
type Status struct {
	State     string   `json:"state"`
	Remaining int      `json:"remainingSeconds"`
	Score     int      `json:"score"`
	Solved    []string `json:"solved"`
	Set       Set      `json:"set"`
}

// Snapshot returns the current session status.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	solved := make([]string, 0, len(s.solved))
	for _, p := range s.set.Problems {
		if s.solved[p.ID] {
			solved = append(solved, p.ID)
		}
	}
	return Status{
		State:     s.state,
		Remaining: int(s.remaining / time.Second),
		Score:     s.score,
		Solved:    solved,
		Set:       s.set,
	}
}
