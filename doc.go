// Package autocommit commits a git working tree automatically while you work.
//
// autocommit watches a repository for file changes. Every change restarts a
// quiet-period timer (1.5 seconds by default); once the tree has been left
// alone for that long, everything is staged and committed with a one-line
// message summarising what was added, modified and deleted:
//
//	Auto Commit [2024-01-01 12:00:00] — Added: 3 (src-a.js, src-b.js +1 more); Deleted: 1 (old.txt)
//
// # Quick Start
//
//	cd /path/to/your/repo
//	autocommit
//
//	# Press Ctrl+C to stop and view the session summary
//
// # Behaviour
//
//   - A path is tracked as added, modified or deleted, never more than one.
//     Modifying a newly added file keeps it "added"; deleting it moves it to
//     "deleted".
//   - Failed "git add" or "git commit" runs are reported and retried on the
//     next quiet period with the same tracked paths.
//   - When git finds nothing to commit the tracked paths are dropped quietly.
//   - Only one autocommit may watch a repository at a time.
//
// # Layout
//
//   - cmd/autocommit: command-line entry point (cobra)
//   - internal/aggregator: debounced change aggregation and commit attempts
//   - internal/changeset: change classification and commit message format
//   - internal/watch: recursive fsnotify watcher
//   - internal/git: git CLI wrapper
//   - internal/session: banner, run loop and shutdown summary
//   - internal/config, internal/logger, internal/errors, internal/lock,
//     internal/clock, internal/constants: supporting packages
package autocommit
