package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bashhack/autocommit/internal/changeset"
	"github.com/bashhack/autocommit/internal/logger"
)

// recorder collects events from a running Watcher.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) seen(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == ev {
			return true
		}
	}
	return false
}

func (r *recorder) anyPath(re *regexp.Regexp) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if re.MatchString(e.Path) {
			return true
		}
	}
	return false
}

func startWatcher(t *testing.T, root string, opts Options) *recorder {
	t.Helper()

	log := logger.NewWithOutput(false, "", false, io.Discard, io.Discard)
	w, err := New(root, log, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan struct{})

	go func() {
		_ = w.Run(ctx)
	}()
	go func() {
		defer close(done)
		for ev := range w.Events() {
			rec.mu.Lock()
			rec.events = append(rec.events, ev)
			rec.mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		cancel()
		_ = w.Close()
		<-done
	})
	return rec
}

func waitFor(t *testing.T, rec *recorder, ev Event) {
	t.Helper()
	require.Eventually(t, func() bool { return rec.seen(ev) }, 5*time.Second, 10*time.Millisecond,
		"expected event %s %s", ev.Op, ev.Path)
}

func TestOpKind(t *testing.T) {
	tests := []struct {
		op   Op
		kind changeset.Kind
		ok   bool
	}{
		{OpAdd, changeset.Added, true},
		{OpAddDir, changeset.Added, true},
		{OpChange, changeset.Modified, true},
		{OpUnlink, changeset.Deleted, true},
		{OpUnlinkDir, changeset.Deleted, true},
		{Op("chmod"), 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			kind, ok := tt.op.Kind()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestNewRejectsMissingRoot(t *testing.T) {
	log := logger.NewWithOutput(false, "", false, io.Discard, io.Discard)

	_, err := New(filepath.Join(t.TempDir(), "missing"), log, Options{})
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(file, log, Options{})
	require.Error(t, err)
}

func TestRelativeAndIgnored(t *testing.T) {
	root := t.TempDir()
	w := &Watcher{root: root, ignore: regexp.MustCompile(DefaultIgnorePattern)}

	rel, ok := w.relative(filepath.Join(root, "src", "a.go"))
	require.True(t, ok)
	assert.Equal(t, "src/a.go", rel)

	rel, ok = w.relative(root)
	require.True(t, ok)
	assert.Equal(t, "", rel)

	_, ok = w.relative(filepath.Dir(root))
	assert.False(t, ok)

	assert.True(t, w.ignored("node_modules/pkg/index.js"))
	assert.True(t, w.ignored(".git/HEAD"))
	assert.False(t, w.ignored("src/a.go"))
	assert.False(t, w.ignored(""), "the root is never ignored")

	bare := &Watcher{root: root}
	assert.True(t, bare.ignored(".git"), "git metadata is excluded without a pattern")
	assert.True(t, bare.ignored(".git/index"))
	assert.False(t, bare.ignored(".github/workflows/ci.yml"))
	assert.False(t, bare.ignored("node_modules/x"))
}

func TestFileLifecycle(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root, Options{})

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))
	waitFor(t, rec, Event{Op: OpAdd, Path: "a.txt"})

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	waitFor(t, rec, Event{Op: OpChange, Path: "a.txt"})

	require.NoError(t, os.Remove(path))
	waitFor(t, rec, Event{Op: OpUnlink, Path: "a.txt"})
}

func TestNewDirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	rec := startWatcher(t, root, Options{})

	dir := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	waitFor(t, rec, Event{Op: OpAddDir, Path: "src"})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package pkg"), 0o644))
	waitFor(t, rec, Event{Op: OpAdd, Path: "src/pkg/b.go"})

	require.NoError(t, os.RemoveAll(filepath.Join(root, "src")))
	waitFor(t, rec, Event{Op: OpUnlinkDir, Path: "src"})
}

func TestExistingSubdirectoryIsWatched(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	rec := startWatcher(t, root, Options{})

	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "c.txt"), []byte("c"), 0o644))
	waitFor(t, rec, Event{Op: OpAdd, Path: "lib/c.txt"})
}

func TestIgnoredPathsAreNotReported(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "dep"), 0o755))
	rec := startWatcher(t, root, Options{Ignore: regexp.MustCompile(DefaultIgnorePattern)})

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep", "index.js"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	// A later event proves the watcher already processed the ignored ones
	require.NoError(t, os.WriteFile(filepath.Join(root, "sentinel.txt"), []byte("s"), 0o644))
	waitFor(t, rec, Event{Op: OpAdd, Path: "sentinel.txt"})

	assert.False(t, rec.anyPath(regexp.MustCompile(DefaultIgnorePattern)))
}
