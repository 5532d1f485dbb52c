// Package task runs named background jobs with an observable status record.
// At most one run per task name is in flight; starting a task that is
// already running returns the existing run.
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/gamecenter/nfl-data/internal/metrics"
)

// State is the lifecycle position of a run.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Done reports whether the run has finished.
func (s State) Done() bool {
	return s == StateSucceeded || s == StateFailed
}

// Run is the status record of one execution.
type Run struct {
	ID         string     `json:"id"`
	Task       string     `json:"task"`
	State      State      `json:"state"`
	Summary    string     `json:"summary,omitempty"`
	Error      string     `json:"error,omitempty"`
	Result     any        `json:"result,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Func is the body of a task. summary and result end up in the run record.
type Func func(ctx context.Context) (summary string, result any, err error)

// ErrShuttingDown is returned by Start after Shutdown.
var ErrShuttingDown = errors.New("task runner is shutting down")

const defaultHistory = 50

// Runner executes tasks on their own goroutines.
type Runner struct {
	mu      sync.Mutex
	runs    map[string]*Run
	order   []string
	active  map[string]string
	latest  map[string]string
	history int
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	metrics metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithMetrics records run outcomes.
func WithMetrics(m metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithHistory sets how many finished runs are remembered.
func WithHistory(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.history = n
		}
	}
}

// NewRunner creates a runner. Runs inherit a context that is cancelled by
// Shutdown.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		runs:    make(map[string]*Run),
		active:  make(map[string]string),
		latest:  make(map[string]string),
		history: defaultHistory,
		ctx:     ctx,
		cancel:  cancel,
		metrics: metrics.Nop{},
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches fn under name. If a run of name is still in flight, that
// run is returned with started false and fn is not called.
func (r *Runner) Start(name string, fn Func) (run Run, started bool, err error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Run{}, false, ErrShuttingDown
	}
	if id, ok := r.active[name]; ok {
		existing := *r.runs[id]
		r.mu.Unlock()
		return existing, false, nil
	}

	rec := &Run{
		ID:        uuid.NewString(),
		Task:      name,
		State:     StatePending,
		CreatedAt: r.now(),
	}
	r.runs[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	r.active[name] = rec.ID
	r.latest[name] = rec.ID
	r.trimLocked()
	snapshot := *rec
	// Added to wg under mu: Shutdown sets closed under mu before it waits.
	r.wg.Go(func() { r.execute(rec.ID, name, fn) })
	r.mu.Unlock()

	return snapshot, true, nil
}

func (r *Runner) execute(id, name string, fn Func) {
	started := r.now()
	r.update(id, func(run *Run) {
		run.State = StateRunning
		run.StartedAt = &started
	})
	r.logger.Info("Task started", "task", name, "run_id", id)

	var (
		summary string
		result  any
		err     error
	)
	var pc panics.Catcher
	pc.Try(func() { summary, result, err = fn(r.ctx) })
	if rec := pc.Recovered(); rec != nil {
		err = fmt.Errorf("task panicked: %w", rec.AsError())
	}

	finished := r.now()
	state := StateSucceeded
	if err != nil {
		state = StateFailed
	}
	r.update(id, func(run *Run) {
		run.State = state
		run.Summary = summary
		run.Result = result
		run.FinishedAt = &finished
		if err != nil {
			run.Error = err.Error()
		}
		if r.active[name] == id {
			delete(r.active, name)
		}
	})

	duration := finished.Sub(started)
	r.metrics.ObserveTask(name, string(state), duration)
	if err != nil {
		r.logger.Error("Task failed", "task", name, "run_id", id, "duration", duration, "error", err)
		return
	}
	r.logger.Info("Task finished", "task", name, "run_id", id, "duration", duration, "summary", summary)
}

func (r *Runner) update(id string, fn func(*Run)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if run, ok := r.runs[id]; ok {
		fn(run)
	}
}

// trimLocked forgets the oldest finished runs beyond the history limit.
func (r *Runner) trimLocked() {
	excess := len(r.order) - r.history
	if excess <= 0 {
		return
	}
	kept := r.order[:0]
	for _, id := range r.order {
		run := r.runs[id]
		if excess > 0 && run.State.Done() && r.latest[run.Task] != id {
			delete(r.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
}

// Get returns a copy of one run.
func (r *Runner) Get(id string) (Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// Latest returns the most recent run of a task.
func (r *Runner) Latest(name string) (Run, bool) {
	r.mu.Lock()
	id, ok := r.latest[name]
	r.mu.Unlock()
	if !ok {
		return Run{}, false
	}
	return r.Get(id)
}

// Shutdown cancels in-flight runs and waits for them to return or for ctx
// to end.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for tasks: %w", ctx.Err())
	}
}
