package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bashhack/autocommit/internal/changeset"
	autoErrors "github.com/bashhack/autocommit/internal/errors"
	"github.com/bashhack/autocommit/internal/logger"
)

// DefaultIgnorePattern excludes dependency trees and git metadata.
const DefaultIgnorePattern = `node_modules|\.git`

// Op names a filesystem change the way the watcher reports it.
type Op string

const (
	OpAdd       Op = "add"
	OpAddDir    Op = "addDir"
	OpChange    Op = "change"
	OpUnlink    Op = "unlink"
	OpUnlinkDir Op = "unlinkDir"
)

// Kind folds an Op into the change kind tracked for commits.
// Directory variants map to the same kind as their file counterparts.
func (op Op) Kind() (changeset.Kind, bool) {
	switch op {
	case OpAdd, OpAddDir:
		return changeset.Added, true
	case OpChange:
		return changeset.Modified, true
	case OpUnlink, OpUnlinkDir:
		return changeset.Deleted, true
	default:
		return 0, false
	}
}

// Event is a single change below the watch root.
// Path is relative to the root and uses forward slashes.
type Event struct {
	Op   Op
	Path string
}

// Options configures a Watcher.
type Options struct {
	// Ignore excludes any path whose root-relative form matches (nil watches everything)
	Ignore *regexp.Regexp

	// Buffer is the capacity of the Events channel (default 256)
	Buffer int
}

// Watcher reports changes anywhere below a root directory.
// fsnotify only watches single directories, so every subdirectory is added
// explicitly, including ones created after the watcher starts.
type Watcher struct {
	fsw    *fsnotify.Watcher
	root   string
	ignore *regexp.Regexp
	logger logger.Logger
	events chan Event

	mu   sync.Mutex
	dirs map[string]struct{}

	closeOnce sync.Once
	closeErr  error
}

// New starts watching root and all of its non-ignored subdirectories.
// Files that already exist are not reported.
func New(root string, log logger.Logger, opts Options) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, autoErrors.Wrapf(autoErrors.ErrWatchFailed, "resolve %s: %v", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, autoErrors.Wrapf(autoErrors.ErrWatchFailed, "stat %s: %v", absRoot, err)
	}
	if !info.IsDir() {
		return nil, autoErrors.Wrapf(autoErrors.ErrWatchFailed, "%s is not a directory", absRoot)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, autoErrors.Wrapf(autoErrors.ErrWatchFailed, "create watcher: %v", err)
	}

	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = 256
	}

	w := &Watcher{
		fsw:    fsw,
		root:   absRoot,
		ignore: opts.Ignore,
		logger: log,
		events: make(chan Event, buffer),
		dirs:   make(map[string]struct{}),
	}

	if err := w.addRecursive(context.Background(), absRoot, false); err != nil {
		_ = fsw.Close()
		return nil, autoErrors.Wrapf(autoErrors.ErrWatchFailed, "watch %s: %v", absRoot, err)
	}

	w.logger.Info("Watching %d directories below %s", w.dirCount(), absRoot)
	return w, nil
}

// Root returns the absolute watch root.
func (w *Watcher) Root() string {
	return w.root
}

// Events returns the channel events are delivered on. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run translates fsnotify notifications into Events until ctx is done or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warning("Watch error: %v", err)
		}
	}
}

// Close stops the underlying fsnotify watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.fsw.Close()
	})
	return w.closeErr
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	rel, ok := w.relative(ev.Name)
	if !ok || w.ignored(rel) {
		return
	}

	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil {
			// Created and removed before we looked
			return
		}
		if info.IsDir() {
			if err := w.addRecursive(ctx, ev.Name, true); err != nil {
				w.logger.Warning("Failed to watch new directory %s: %v", rel, err)
			}
			return
		}
		w.emit(ctx, Event{Op: OpAdd, Path: rel})

	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if w.forgetDir(ev.Name) {
			w.emit(ctx, Event{Op: OpUnlinkDir, Path: rel})
			return
		}
		w.emit(ctx, Event{Op: OpUnlink, Path: rel})

	case ev.Has(fsnotify.Write):
		w.emit(ctx, Event{Op: OpChange, Path: rel})
	}
}

// addRecursive watches dir and every non-ignored directory below it.
// With report set it also emits addDir and add for everything it finds,
// which covers files written into a new directory before its watch existed.
func (w *Watcher) addRecursive(ctx context.Context, dir string, report bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// Skip unreadable subdirectories
			return nil
		}

		rel, ok := w.relative(path)
		if !ok {
			return nil
		}
		if rel != "" && w.ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.IsDir() {
			if report {
				w.emit(ctx, Event{Op: OpAdd, Path: rel})
			}
			return nil
		}

		if err := w.fsw.Add(path); err != nil {
			if path == dir {
				return err
			}
			w.logger.Warning("Failed to watch %s: %v", rel, err)
			return filepath.SkipDir
		}

		w.mu.Lock()
		w.dirs[path] = struct{}{}
		w.mu.Unlock()

		if report {
			w.emit(ctx, Event{Op: OpAddDir, Path: rel})
		}
		return nil
	})
}

// forgetDir drops dir and its descendants from the watched set and reports
// whether dir was a watched directory.
func (w *Watcher) forgetDir(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dirs[dir]; !ok {
		return false
	}

	prefix := dir + string(filepath.Separator)
	for path := range w.dirs {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(w.dirs, path)
			// The kernel drops watches on removal; renamed dirs keep theirs
			_ = w.fsw.Remove(path)
		}
	}
	return true
}

func (w *Watcher) dirCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	w.logger.Debug("fs %s %s", ev.Op, ev.Path)
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

// relative converts an absolute path to the root-relative slash form.
// The root itself maps to "".
func (w *Watcher) relative(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return filepath.ToSlash(rel), true
}

// ignored reports whether rel is excluded. The root's .git directory is
// always excluded: commits write to it and would otherwise trigger themselves.
func (w *Watcher) ignored(rel string) bool {
	if rel == "" {
		return false
	}
	if rel == ".git" || strings.HasPrefix(rel, ".git/") {
		return true
	}
	return w.ignore != nil && w.ignore.MatchString(rel)
}
