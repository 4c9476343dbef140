package aggregator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bashhack/autocommit/internal/changeset"
	"github.com/bashhack/autocommit/internal/clock"
	autoErrors "github.com/bashhack/autocommit/internal/errors"
	"github.com/bashhack/autocommit/internal/logger"
	"github.com/bashhack/autocommit/internal/watch"
)

// DefaultQuietPeriod is how long the tree must stay untouched before a commit.
const DefaultQuietPeriod = 1500 * time.Millisecond

// Committer stages and commits a working tree. *git.Repository implements it.
type Committer interface {
	// Stage marks all working-tree changes for the next commit
	Stage(ctx context.Context) error

	// Commit records the staged changes with message
	Commit(ctx context.Context, message string) error
}

// Result describes what a commit attempt did.
type Result int

const (
	// ResultSkipped means the ChangeSet was empty and nothing ran.
	ResultSkipped Result = iota
	// ResultDeferred means another stage/commit pair was still running.
	ResultDeferred
	// ResultCommitted means a commit was created and the ChangeSet cleared.
	ResultCommitted
	// ResultNothingToCommit means git found no delta; the ChangeSet was cleared.
	ResultNothingToCommit
	// ResultStageFailed means staging failed; the ChangeSet is unchanged.
	ResultStageFailed
	// ResultCommitFailed means committing failed; the ChangeSet is unchanged.
	ResultCommitFailed
)

// String returns a short name for logs and test failures.
func (r Result) String() string {
	switch r {
	case ResultSkipped:
		return "skipped"
	case ResultDeferred:
		return "deferred"
	case ResultCommitted:
		return "committed"
	case ResultNothingToCommit:
		return "nothing-to-commit"
	case ResultStageFailed:
		return "stage-failed"
	case ResultCommitFailed:
		return "commit-failed"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Options configures an Aggregator. Zero values select the defaults.
type Options struct {
	// QuietPeriod is the debounce window (default DefaultQuietPeriod)
	QuietPeriod time.Duration

	// Clock provides time and timers (default clock.Real)
	Clock clock.Clock
}

// Aggregator coalesces filesystem events into debounced auto commits.
//
// RecordEvent, timer expiry and commit completion all mutate state under a
// single mutex, so the aggregator behaves like one logical thread. At most one
// stage/commit pair runs at a time; a timer that fires meanwhile is deferred
// and re-armed once the pair completes.
type Aggregator struct {
	mu sync.Mutex

	// changes holds the paths touched since the last commit
	changes *changeset.ChangeSet

	// timer is the pending debounce timer, nil while idle
	timer clock.Timer

	// generation invalidates timer callbacks that lost a race with Stop
	generation uint64

	// inFlight is set while a stage/commit pair runs
	inFlight bool

	// deferred records a commit request that arrived while inFlight
	deferred bool

	// stopped disables further scheduling
	stopped bool

	// running counts in-flight attempts for Wait
	running sync.WaitGroup

	// baseCtx is the context timer-triggered commits run with
	baseCtx context.Context

	commits     int
	lastMessage string

	committer   Committer
	clock       clock.Clock
	logger      logger.Logger
	quietPeriod time.Duration
}

// New creates an Aggregator that commits through committer.
func New(committer Committer, log logger.Logger, opts Options) (*Aggregator, error) {
	if committer == nil {
		return nil, fmt.Errorf("committer must not be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if opts.QuietPeriod < 0 {
		return nil, autoErrors.NewConfigError("quietPeriod", opts.QuietPeriod,
			autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, "quiet period must not be negative"))
	}
	if opts.QuietPeriod == 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}

	return &Aggregator{
		changes:     changeset.New(),
		baseCtx:     context.Background(),
		committer:   committer,
		clock:       opts.Clock,
		logger:      log,
		quietPeriod: opts.QuietPeriod,
	}, nil
}

// Run feeds events into RecordEvent until ctx is done or events is closed.
// Commits triggered by the timer inherit ctx's values but not its
// cancellation, so an in-flight stage/commit pair always runs to completion.
func (a *Aggregator) Run(ctx context.Context, events <-chan watch.Event) error {
	a.mu.Lock()
	a.baseCtx = context.WithoutCancel(ctx)
	a.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			kind, ok := ev.Op.Kind()
			if !ok {
				a.logger.Debug("Ignoring event %q for %s", ev.Op, ev.Path)
				continue
			}
			a.RecordEvent(kind, ev.Path)
		}
	}
}

// RecordEvent applies one change to the ChangeSet and restarts the debounce timer.
func (a *Aggregator) RecordEvent(kind changeset.Kind, path string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return
	}

	a.changes.Record(kind, path)
	a.logger.Debug("Recorded %s %s (%d tracked)", kind, path, a.changes.Len())
	a.scheduleLocked()
}

// scheduleLocked cancels any pending timer and starts a new quiet period.
func (a *Aggregator) scheduleLocked() {
	if a.timer != nil {
		a.timer.Stop()
	}

	a.generation++
	gen := a.generation
	a.timer = a.clock.AfterFunc(a.quietPeriod, func() { a.onQuiet(gen) })
}

// onQuiet runs when a quiet period elapses without events.
func (a *Aggregator) onQuiet(gen uint64) {
	a.mu.Lock()
	if a.stopped || gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	ctx := a.baseCtx
	a.mu.Unlock()

	_, _ = a.AttemptCommit(ctx)
}

// AttemptCommit stages and commits the accumulated changes.
//
// An empty ChangeSet is a no-op. A call made while another attempt is running
// returns ResultDeferred and the timer is re-armed when that attempt ends.
// On ResultCommitted and ResultNothingToCommit every path recorded before the
// attempt started is cleared; paths recorded while git ran stay tracked.
// Stage and commit failures are logged, leave the ChangeSet intact and are
// returned for callers that want them; the next quiet period retries.
func (a *Aggregator) AttemptCommit(ctx context.Context) (Result, error) {
	a.mu.Lock()
	if a.changes.IsEmpty() {
		a.mu.Unlock()
		return ResultSkipped, nil
	}
	if a.inFlight {
		a.deferred = true
		a.mu.Unlock()
		a.logger.Debug("Commit already in progress, deferring")
		return ResultDeferred, nil
	}
	a.inFlight = true
	a.running.Add(1)
	defer a.running.Done()
	snap := a.changes.Snapshot()
	now := a.clock.Now()
	a.mu.Unlock()

	result, message, err := a.stageAndCommit(ctx, snap, now)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.inFlight = false
	switch result {
	case ResultCommitted:
		a.commits++
		a.lastMessage = message
		a.changes.ClearThrough(snap.Revision)
	case ResultNothingToCommit:
		a.changes.ClearThrough(snap.Revision)
	}

	if a.deferred {
		a.deferred = false
		if !a.stopped && !a.changes.IsEmpty() {
			a.scheduleLocked()
		}
	}

	return result, err
}

// stageAndCommit runs the two git steps strictly in sequence.
func (a *Aggregator) stageAndCommit(ctx context.Context, snap changeset.Snapshot, now time.Time) (Result, string, error) {
	if err := a.committer.Stage(ctx); err != nil {
		a.logger.Error("git add error: %s", commandOutput(err))
		return ResultStageFailed, "", err
	}

	message := snap.Message(now)
	if err := a.committer.Commit(ctx, message); err != nil {
		if autoErrors.Is(err, autoErrors.ErrNothingToCommit) {
			a.logger.Info("Nothing to commit after staging %d tracked paths", len(snap.Added)+len(snap.Changed)+len(snap.Deleted))
			return ResultNothingToCommit, "", nil
		}
		a.logger.Error("git commit error: %s", commandOutput(err))
		return ResultCommitFailed, "", err
	}

	a.logger.Success("Committed: %s", message)
	return ResultCommitted, message, nil
}

// Flush cancels the pending timer and attempts a commit immediately.
func (a *Aggregator) Flush(ctx context.Context) (Result, error) {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.generation++
	a.mu.Unlock()

	return a.AttemptCommit(ctx)
}

// Stop cancels the pending timer and ignores further events.
// A stage/commit pair already running is not interrupted.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	a.generation++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Wait blocks until no stage/commit pair is running. Call it after Stop.
func (a *Aggregator) Wait() {
	a.running.Wait()
}

// Snapshot returns a copy of the tracked changes.
func (a *Aggregator) Snapshot() changeset.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.changes.Snapshot()
}

// TimerPending reports whether a debounce timer is armed.
func (a *Aggregator) TimerPending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// Commits returns how many commits this aggregator has created.
func (a *Aggregator) Commits() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commits
}

// LastMessage returns the message of the most recent commit, or "".
func (a *Aggregator) LastMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastMessage
}

// QuietPeriod returns the configured debounce window.
func (a *Aggregator) QuietPeriod() time.Duration {
	return a.quietPeriod
}

// commandOutput prefers git's own output over the wrapped error text.
func commandOutput(err error) string {
	var gitErr *autoErrors.GitError
	if autoErrors.As(err, &gitErr) {
		if out := strings.TrimSpace(gitErr.Output); out != "" {
			return out
		}
	}
	return err.Error()
}
