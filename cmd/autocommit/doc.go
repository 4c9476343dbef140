// Command autocommit watches a git working tree and commits changes
// automatically once files stop changing.
//
// Usage:
//
//	autocommit [flags]
//	autocommit version
//
// Flags:
//
//	-c, --config string          YAML settings file (default: <repo>/.autocommit.yaml)
//	-r, --repo string            Path to repository (default: current directory)
//	-q, --quiet-period duration  Time without changes before committing (default 1.5s)
//	    --ignore string          Regular expression of paths to ignore (default "node_modules|\.git")
//	    --flush-on-exit          Commit pending changes once more on shutdown
//	    --quiet                  Hide warning messages
//	    --debug                  Enable debug logging
//	    --log-file string        Path to log file
//	    --log-level string       Debug log level (default "info")
//	    --logo                   Display ASCII logo and exit
//
// Every commit uses a one-line message such as:
//
//	Auto Commit [2024-01-01 12:00:00] — Added: 3 (src-a.js, src-b.js +1 more); Deleted: 1 (old.txt)
//
// Stop the watcher with Ctrl+C to see a session summary.
package main
