package session

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/bashhack/autocommit/internal/aggregator"
	"github.com/bashhack/autocommit/internal/clock"
	"github.com/bashhack/autocommit/internal/constants"
	autoErrors "github.com/bashhack/autocommit/internal/errors"
	"github.com/bashhack/autocommit/internal/git"
	"github.com/bashhack/autocommit/internal/logger"
	"github.com/bashhack/autocommit/internal/watch"
)

// Config holds the settings a watch session needs.
type Config struct {
	// RepoPath is the absolute path of the repository to watch
	RepoPath string

	// QuietPeriod is the debounce window before committing
	QuietPeriod time.Duration

	// Ignore excludes matching paths from watching (nil watches everything)
	Ignore *regexp.Regexp

	// FlushOnExit makes one last commit attempt on shutdown
	FlushOnExit bool
}

// Session watches one repository and auto-commits its changes until the
// context is cancelled.
type Session struct {
	config     Config
	repo       *git.Repository
	logger     logger.Logger
	clock      clock.Clock
	aggregator *aggregator.Aggregator

	startTime time.Time
	branch    string
}

// New creates a Session committing through the git CLI.
func New(cfg Config, log logger.Logger) (*Session, error) {
	repo, err := git.NewRepository(cfg.RepoPath)
	if err != nil {
		return nil, err
	}
	return NewWithRepository(cfg, repo, log, clock.Real{})
}

// NewWithRepository creates a Session with an explicit repository and clock.
func NewWithRepository(cfg Config, repo *git.Repository, log logger.Logger, clk clock.Clock) (*Session, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository must not be nil")
	}
	if log == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if clk == nil {
		clk = clock.Real{}
	}

	agg, err := aggregator.New(repo, log, aggregator.Options{QuietPeriod: cfg.QuietPeriod, Clock: clk})
	if err != nil {
		return nil, err
	}

	return &Session{
		config:     cfg,
		repo:       repo,
		logger:     log,
		clock:      clk,
		aggregator: agg,
	}, nil
}

// Aggregator exposes the session's aggregator.
func (s *Session) Aggregator() *aggregator.Aggregator {
	return s.aggregator
}

// Run watches the repository until ctx is cancelled or the watcher fails.
// Cancellation is returned as ctx.Err(); callers treat it as a normal stop.
func (s *Session) Run(ctx context.Context) error {
	s.startTime = s.clock.Now()

	w, err := watch.New(s.config.RepoPath, s.logger, watch.Options{Ignore: s.config.Ignore})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	s.printBanner(ctx)

	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Run(watchCtx) }()

	s.logger.StatusMessage("%s", constants.StartMessage)
	runErr := s.aggregator.Run(ctx, w.Events())

	s.aggregator.Stop()
	cancelWatch()
	_ = w.Close()
	werr := <-watchErr

	// A commit started by the timer finishes before we exit
	s.aggregator.Wait()

	if s.config.FlushOnExit {
		s.flush(ctx)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if runErr != nil {
		return runErr
	}
	// The event stream closed on its own
	if werr != nil && !autoErrors.Is(werr, context.Canceled) {
		return autoErrors.Wrapf(autoErrors.ErrWatchFailed, "%v", werr)
	}
	return autoErrors.Wrap(autoErrors.ErrWatchFailed, "event stream closed")
}

func (s *Session) flush(ctx context.Context) {
	if s.aggregator.Snapshot().IsEmpty() {
		return
	}
	s.logger.InfoToUser("Committing pending changes before exit")
	result, err := s.aggregator.Flush(context.WithoutCancel(ctx))
	s.logger.Info("Final commit attempt: %s (err=%v)", result, err)
}

func (s *Session) printBanner(ctx context.Context) {
	branch, err := s.repo.CurrentBranch(ctx)
	if err != nil || branch == "" {
		s.logger.Warning("Could not determine current branch: %v", err)
		branch = "unknown"
	}
	s.branch = branch

	ignore := "(none)"
	if s.config.Ignore != nil {
		ignore = s.config.Ignore.String()
	}

	s.logger.StatusMessage("🔄 autocommit started at %s", s.startTime.Format("2006-01-02 15:04:05"))
	s.logger.StatusMessage("📂 Repository: %s", s.config.RepoPath)
	s.logger.StatusMessage("🌿 Branch: %s", branch)
	s.logger.StatusMessage("⏱️  Quiet period: %s", s.aggregator.QuietPeriod())
	s.logger.StatusMessage("🙈 Ignoring: %s", ignore)
	s.logger.StatusMessage("❓ Press Ctrl+C to stop and view session summary")
}

// PrintSummary reports what the session did.
func (s *Session) PrintSummary() {
	end := s.clock.Now()
	duration := end.Sub(s.startTime)
	if s.startTime.IsZero() {
		duration = 0
	}
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	s.logger.StatusMessage("")
	s.logger.StatusMessage(constants.SummaryRule)
	s.logger.StatusMessage("📊 autocommit Session Summary")
	s.logger.StatusMessage(constants.SummaryRule)
	s.logger.StatusMessage("✅ Total commits made: %d", s.aggregator.Commits())
	s.logger.StatusMessage("⏱️  Session duration: %dh %dm %ds", hours, minutes, seconds)
	if s.branch != "" {
		s.logger.StatusMessage("🌿 Branch: %s", s.branch)
	}
	if msg := s.aggregator.LastMessage(); msg != "" {
		s.logger.StatusMessage("📝 Last commit: %s", msg)
	}
	if pending := s.aggregator.Snapshot(); !pending.IsEmpty() {
		s.logger.StatusMessage("⚠️  Uncommitted tracked paths: %d", len(pending.Added)+len(pending.Changed)+len(pending.Deleted))
	}
	s.logger.StatusMessage(constants.SummaryRule)
	s.logger.StatusMessage("🛑 autocommit terminated at %s", end.Format("2006-01-02 15:04:05"))
}
