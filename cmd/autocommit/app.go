package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/bashhack/autocommit/internal/config"
	"github.com/bashhack/autocommit/internal/constants"
	autoErrors "github.com/bashhack/autocommit/internal/errors"
	"github.com/bashhack/autocommit/internal/git"
	"github.com/bashhack/autocommit/internal/lock"
	"github.com/bashhack/autocommit/internal/logger"
	"github.com/bashhack/autocommit/internal/session"
)

// Watcher runs a watch session
type Watcher interface {
	PrintSummary()
	Run(ctx context.Context) error
}

// Locker manages file locking
type Locker interface {
	Acquire() error
	Release() error
}

// AppOptions contains app configuration and dependencies.
// Nil optional fields are replaced with defaults.
type AppOptions struct {
	// Config holds the application configuration settings (required).
	Config *config.Config

	// Logger provides logging (optional, built from Config when nil).
	Logger logger.Logger

	// Locker guards the repository against a second watcher (optional).
	Locker Locker

	// Watcher runs the watch session (optional).
	Watcher Watcher

	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// ExecLookPath locates the git executable (optional, defaults to exec.LookPath).
	ExecLookPath func(file string) (string, error)

	// IsRepository validates the repository path (optional, defaults to git.IsRepository).
	IsRepository func(string) (bool, error)
}

// App is the autocommit application.
// It wires configuration, logging, locking and the watch session together.
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Locker  Locker
	Watcher Watcher

	Stdout io.Writer
	Stderr io.Writer

	execLookPath func(file string) (string, error)
	isRepository func(string) (bool, error)
}

// NewApp creates an App. It panics if opts.Config is nil.
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:       opts.Config,
		Logger:       opts.Logger,
		Locker:       opts.Locker,
		Watcher:      opts.Watcher,
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		execLookPath: opts.ExecLookPath,
		isRepository: opts.IsRepository,
	}

	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.execLookPath == nil {
		app.execLookPath = exec.LookPath
	}
	if app.isRepository == nil {
		app.isRepository = git.IsRepository
	}

	return app
}

// Initialize finalizes the config and builds missing components
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		if autoErrors.Is(err, autoErrors.ErrInvalidConfiguration) {
			return err
		}
		return autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		l := logger.NewWithOutput(a.Config.Debug, a.Config.LogFile, a.Config.Verbose, a.Stdout, a.Stderr)
		if level, ok := logger.ParseLogLevel(a.Config.LogLevel); ok {
			l.SetLevel(level)
		}
		a.Logger = l
	}

	if a.Config.ConfigFile != "" {
		a.Logger.Info("Loaded settings from %s", a.Config.ConfigFile)
	}

	if a.Locker == nil {
		locker, err := lock.New(a.Config.RepoPath)
		if err != nil {
			return autoErrors.Wrap(err, "failed to initialize lock")
		}
		a.Locker = locker
	}

	if a.Watcher == nil {
		s, err := session.New(session.Config{
			RepoPath:    a.Config.RepoPath,
			QuietPeriod: a.Config.QuietPeriod,
			Ignore:      a.Config.IgnoreMatcher(),
			FlushOnExit: a.Config.FlushOnExit,
		}, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create watch session: %w", err)
		}
		a.Watcher = s
	}

	return nil
}

// Run initializes the app, checks prerequisites, takes the repository lock
// and watches until ctx is cancelled. The session summary is printed once the
// session ends, whatever the reason.
func (a *App) Run(ctx context.Context) error {
	if a.Config.ShowLogo {
		a.ShowLogo()
		return nil
	}

	if err := a.Initialize(); err != nil {
		return err
	}

	defer func() {
		if err := a.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
		}
	}()

	if err := a.checkRequiredCommands(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error: %v. Please install it and try again.\n", err)
		return err
	}

	isRepo, err := a.isRepository(a.Config.RepoPath)
	if err != nil {
		a.Logger.Warning("Failed to check if path is a git repository: %v", err)
		return autoErrors.Wrap(autoErrors.ErrGitOperationFailed, err.Error())
	}
	if !isRepo {
		return autoErrors.Wrapf(autoErrors.ErrNotGitRepository, "%s", a.Config.RepoPath)
	}
	a.Logger.Info("Git repository verified")

	if err := a.Locker.Acquire(); err != nil {
		if autoErrors.Is(err, autoErrors.ErrAlreadyRunning) {
			return err
		}
		return autoErrors.Wrap(autoErrors.ErrLockAcquisitionFailure, err.Error())
	}

	err = a.Watcher.Run(ctx)
	a.Watcher.PrintSummary()
	return err
}

// ShowLogo displays ASCII art logo
func (a *App) ShowLogo() {
	_, _ = fmt.Fprint(a.Stdout, constants.Logo+"\n")
	_, _ = fmt.Fprintln(a.Stdout, "")

	asciiArtWidth := 60
	padding := (asciiArtWidth - len(constants.Tagline)) / 2
	if padding < 0 {
		padding = 0
	}
	_, _ = fmt.Fprintf(a.Stdout, "%s%s\n", strings.Repeat(" ", padding), constants.Tagline)
}

// checkRequiredCommands verifies git is available in PATH
func (a *App) checkRequiredCommands() error {
	if _, err := a.execLookPath("git"); err != nil {
		return fmt.Errorf("git is not found in PATH")
	}
	return nil
}

// Close releases resources held by the App
func (a *App) Close() error {
	var errs []error

	if a.Locker != nil {
		if err := a.Locker.Release(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("Failed to release lock during cleanup: %v", err)
			} else {
				_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to release lock during cleanup: %v\n", err)
			}
			errs = append(errs, err)
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.Stderr, "❌ Failed to close logger: %v\n", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return autoErrors.Join(errs...)
	}
	return nil
}
