// Package logger provides logging facilities for autocommit.
//
// The Logger interface keeps two audiences apart. Debug, Info, Warning and
// Error feed a structured zap log that is written to a file only when debug
// logging is enabled. InfoToUser, WarningToUser, Success and StatusMessage
// produce the console lines a developer sees while the watcher runs: the start
// line, one line per commit, and error lines for failed git commands.
//
// # Usage
//
//	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
//	defer log.Close()
//
//	log.StatusMessage("Watching for file changes...")
//	log.Success("Committed: %s", message)
//	log.Error("git add error: %s", output)
//
// # Levels
//
// The structured log starts at info level. Use ParseLogLevel and
// DefaultLogger.SetLevel to lower it to debug, which records every filesystem
// event the aggregator receives.
//
// # Thread Safety
//
// DefaultLogger serialises all writes with a mutex. The aggregator logs from
// timer goroutines, so this matters.
package logger
