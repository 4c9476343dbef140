// Package config loads and validates autocommit settings.
//
// Settings are resolved in increasing order of precedence:
//
//  1. Defaults from New
//  2. A YAML file: --config, or .autocommit.yaml in the repository
//  3. Environment variables
//  4. Command-line flags that were set explicitly
//
// # YAML File
//
//	repo: ~/src/project
//	quiet_period: 2s
//	ignore: 'node_modules|\.git|dist/'
//	flush_on_exit: true
//	verbose: true
//	debug: false
//	log_file: /tmp/autocommit.log
//	log_level: debug
//
// # Environment Variables
//
//	REPO_PATH       Path to repository
//	QUIET_PERIOD    Debounce window ("2s", "750ms" or seconds like "1.5")
//	IGNORE_PATTERN  Regular expression of paths to ignore
//	FLUSH_ON_EXIT   Commit pending changes on shutdown (true/false)
//	VERBOSE         Echo warnings to the console (true/false)
//	DEBUG           Enable debug logging (true/false)
//	LOG_FILE        Path to log file
//	LOG_LEVEL       Debug log level
//
// Finalize must be called after loading; it validates the quiet period, the
// ignore pattern and the log level, makes the repository path absolute and
// picks the default log file location.
package config
