// Package session runs one autocommit watch session: it starts the
// filesystem watcher, feeds its events into an aggregator, prints the startup
// banner and, on shutdown, lets any in-flight commit finish, optionally
// flushes pending changes and prints a summary.
package session
