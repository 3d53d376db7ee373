package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Round performs one poll-and-persist pass. An error is logged by the
// [Scheduler] and does not stop the loop.
type Round func(ctx context.Context) error

// Scheduler runs a [Round] immediately and then once per interval until it is
// stopped or its context is cancelled.
//
// Rounds never overlap: the next round starts only after the previous one
// returned and the interval elapsed, so the effective period is
// interval + round duration.
//
// All lifecycle methods (Start, Stop, Wait) are safe for concurrent use.
type Scheduler struct {
	interval time.Duration
	round    Round
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	rounds  int
}

// NewScheduler creates a new [Scheduler].
//
// Parameters:
//   - interval: Pause between the end of one round and the start of the next
//   - round: The work performed on every tick
//   - logger: Logger for round failures and recovered panics
//
// The scheduler must be started with [Scheduler.Start].
func NewScheduler(interval time.Duration, round Round, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval: interval,
		round:    round,
		logger:   logger,
	}
}

// Start begins the loop in a background goroutine and returns immediately.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.loop(loopCtx)
	}()
}

// Stop cancels the loop and waits for an in-flight round to complete.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.Wait()
}

// Wait blocks until the loop goroutine has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Rounds returns how many rounds have completed so far.
func (s *Scheduler) Rounds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rounds
}

func (s *Scheduler) loop(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		s.runRound(ctx)

		s.mu.Lock()
		s.rounds++
		s.mu.Unlock()

		timer.Reset(s.interval)
	}
}

// runRound calls the round with panic recovery. A panicking round is logged
// with a correlation id and the loop carries on.
func (s *Scheduler) runRound(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("poll round panic",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	if err := s.round(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("poll round failed", "error", err.Error())
	}
}
