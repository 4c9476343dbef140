package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
	"github.com/bashhack/autocommit/internal/logger"
)

const (
	// DefaultQuietPeriod is how long the working tree must stay untouched
	// before pending changes are committed.
	DefaultQuietPeriod = 1500 * time.Millisecond

	// DefaultIgnorePattern excludes dependency trees and git metadata from watching.
	// It is matched against paths relative to the repository root.
	DefaultIgnorePattern = `node_modules|\.git`

	// DefaultConfigFilename is looked up in the repository when --config is not given.
	DefaultConfigFilename = ".autocommit.yaml"

	// DefaultLogLevel is the minimum level written to the debug log.
	DefaultLogLevel = "info"
)

// Config holds all autocommit settings.
// Values are layered: defaults, then the YAML file, then environment
// variables, then command-line flags.
type Config struct {
	// RepoPath is the repository to watch. Empty means the working directory.
	RepoPath string `yaml:"repo"`

	// QuietPeriod is the debounce window between the last change and the commit.
	QuietPeriod time.Duration `yaml:"quiet_period"`

	// Ignore is a regular expression; matching paths are not watched.
	// An empty pattern watches everything.
	Ignore string `yaml:"ignore"`

	// FlushOnExit makes one final commit attempt for pending changes on shutdown.
	FlushOnExit bool `yaml:"flush_on_exit"`

	// Verbose echoes warnings to the console.
	Verbose bool `yaml:"verbose"`

	// Debug enables the structured log file.
	Debug bool `yaml:"debug"`

	// LogFile is the debug log location. Empty means the XDG data directory.
	LogFile string `yaml:"log_file"`

	// LogLevel is the minimum level for the debug log (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// ConfigFile is the YAML file the settings were read from, if any.
	ConfigFile string `yaml:"-"`

	// ShowLogo prints the ASCII logo and exits.
	ShowLogo bool `yaml:"-"`

	// VersionInfo is injected at build time.
	VersionInfo VersionInfo `yaml:"-"`

	ignore *regexp.Regexp
	flags  *flagValues
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// String formats the version the way `autocommit version` prints it.
func (v VersionInfo) String() string {
	return fmt.Sprintf("autocommit %s (%s) built on %s", v.Version, v.Commit, v.Date)
}

// New creates a Config with default values
func New() *Config {
	return &Config{
		QuietPeriod: DefaultQuietPeriod,
		Ignore:      DefaultIgnorePattern,
		Verbose:     true,
		LogLevel:    DefaultLogLevel,
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFile overlays settings from a YAML file. Keys absent from the file keep
// their current values; unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return autoErrors.NewConfigError("config", path, autoErrors.Wrap(err, "read settings"))
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return autoErrors.NewConfigError("config", path,
			autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, err.Error()))
	}

	c.ConfigFile = path
	return nil
}

// LoadDefaultFile loads DefaultConfigFilename from dir when it exists.
func (c *Config) LoadDefaultFile(dir string) error {
	path := filepath.Join(dir, DefaultConfigFilename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return autoErrors.NewConfigError("config", path, autoErrors.Wrap(err, "stat settings"))
	}
	return c.LoadFile(path)
}

// LoadFromEnvironment updates config from environment variables
func (c *Config) LoadFromEnvironment() {
	c.RepoPath = getEnvString("REPO_PATH", c.RepoPath)
	c.QuietPeriod = getEnvDuration("QUIET_PERIOD", c.QuietPeriod)
	c.Ignore = getEnvString("IGNORE_PATTERN", c.Ignore)
	c.FlushOnExit = getEnvBool("FLUSH_ON_EXIT", c.FlushOnExit)
	c.Verbose = getEnvBool("VERBOSE", c.Verbose)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
}

// Load applies the YAML file and the environment on top of the current values,
// then re-applies any flag set explicitly on fs so flags win.
// The file is --config when given, otherwise DefaultConfigFilename in the
// repository named by --repo, REPO_PATH or the working directory.
func (c *Config) Load(fs *pflag.FlagSet) error {
	if path := c.flagConfigPath(fs); path != "" {
		if err := c.LoadFile(path); err != nil {
			return err
		}
	} else {
		dir := c.flagRepoPath(fs)
		if dir == "" {
			dir = getEnvString("REPO_PATH", c.RepoPath)
		}
		if dir == "" {
			dir = "."
		}
		if err := c.LoadDefaultFile(dir); err != nil {
			return err
		}
	}

	c.LoadFromEnvironment()
	return c.ApplyFlags(fs)
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.QuietPeriod <= 0 {
		err := fmt.Errorf("invalid quiet period: %s (must be greater than 0)", c.QuietPeriod)
		return autoErrors.NewConfigError("quietPeriod", c.QuietPeriod,
			autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, err.Error()))
	}

	c.ignore = nil
	if c.Ignore != "" {
		re, err := regexp.Compile(c.Ignore)
		if err != nil {
			return autoErrors.NewConfigError("ignore", c.Ignore,
				autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, err.Error()))
		}
		c.ignore = re
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, ok := logger.ParseLogLevel(c.LogLevel); !ok {
		return autoErrors.NewConfigError("logLevel", c.LogLevel,
			autoErrors.Wrap(autoErrors.ErrInvalidConfiguration, "expected one of debug, info, warn, error"))
	}

	if c.RepoPath == "" {
		var err error
		c.RepoPath, err = os.Getwd()
		if err != nil {
			return autoErrors.NewConfigError("repoPath", "", autoErrors.Wrap(err, "failed to get current directory"))
		}
	}

	absRepoPath, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return autoErrors.NewConfigError("repoPath", c.RepoPath, autoErrors.Wrap(err, "failed to resolve absolute path"))
	}
	c.RepoPath = absRepoPath

	if c.LogFile == "" {
		c.LogFile = DefaultLogFile(c.RepoPath)
		if c.Debug {
			if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o700); err != nil {
				return autoErrors.NewConfigError("logFile", c.LogFile, autoErrors.Wrap(err, "cannot create log directory"))
			}
		}
	}

	return nil
}

// IgnoreMatcher returns the compiled ignore pattern, nil when nothing is ignored.
// It is only populated after Finalize.
func (c *Config) IgnoreMatcher() *regexp.Regexp {
	return c.ignore
}

// DefaultLogFile returns the XDG data path of the debug log for repoPath.
func DefaultLogFile(repoPath string) string {
	logDir := os.Getenv("XDG_DATA_HOME")
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			logDir = filepath.Join(homeDir, ".local", "share")
		} else {
			logDir = os.TempDir()
		}
	}

	return filepath.Join(logDir, "autocommit", "logs", fmt.Sprintf("autocommit-%016x.log", xxhash.Sum64String(repoPath)))
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvDuration accepts a Go duration ("2s", "750ms") or plain seconds ("1.5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if seconds, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}
