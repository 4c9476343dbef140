package config

import (
	"time"

	"github.com/spf13/pflag"

	autoErrors "github.com/bashhack/autocommit/internal/errors"
)

// flagValues receives parsed flags until ApplyFlags copies the explicitly
// set ones into the Config.
type flagValues struct {
	configFile  string
	repoPath    string
	quietPeriod time.Duration
	ignore      string
	flushOnExit bool
	quiet       bool
	debug       bool
	logFile     string
	logLevel    string
	showLogo    bool
}

// BindFlags registers the command-line flags on fs with the current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	v := &flagValues{}
	c.flags = v

	fs.StringVarP(&v.configFile, "config", "c", "", "Path to a YAML settings file (default: <repo>/"+DefaultConfigFilename+")")
	fs.StringVarP(&v.repoPath, "repo", "r", c.RepoPath, "Path to repository (default: current directory)")
	fs.DurationVarP(&v.quietPeriod, "quiet-period", "q", c.QuietPeriod, "Time without changes before committing")
	fs.StringVar(&v.ignore, "ignore", c.Ignore, "Regular expression of paths to ignore (empty watches everything)")
	fs.BoolVar(&v.flushOnExit, "flush-on-exit", c.FlushOnExit, "Commit pending changes once more on shutdown")
	fs.BoolVar(&v.quiet, "quiet", !c.Verbose, "Hide warning messages")
	fs.BoolVar(&v.debug, "debug", c.Debug, "Enable debug logging")
	fs.StringVar(&v.logFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/autocommit/logs/autocommit-{repo-hash}.log)")
	fs.StringVar(&v.logLevel, "log-level", c.LogLevel, "Debug log level: debug, info, warn, error")
	fs.BoolVar(&v.showLogo, "logo", false, "Display ASCII logo and exit")
}

// ApplyFlags copies every flag explicitly set on fs into the Config.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	if c.flags == nil || fs == nil {
		return nil
	}
	if !fs.Parsed() {
		return autoErrors.NewConfigError("flags", nil,
			autoErrors.Wrap(autoErrors.ErrInvalidFlag, "flags have not been parsed"))
	}

	v := c.flags
	if fs.Changed("config") {
		c.ConfigFile = v.configFile
	}
	if fs.Changed("repo") {
		c.RepoPath = v.repoPath
	}
	if fs.Changed("quiet-period") {
		c.QuietPeriod = v.quietPeriod
	}
	if fs.Changed("ignore") {
		c.Ignore = v.ignore
	}
	if fs.Changed("flush-on-exit") {
		c.FlushOnExit = v.flushOnExit
	}
	// Inverted flag
	if fs.Changed("quiet") {
		c.Verbose = !v.quiet
	}
	if fs.Changed("debug") {
		c.Debug = v.debug
	}
	if fs.Changed("log-file") {
		c.LogFile = v.logFile
	}
	if fs.Changed("log-level") {
		c.LogLevel = v.logLevel
	}
	if fs.Changed("logo") {
		c.ShowLogo = v.showLogo
	}
	return nil
}

func (c *Config) flagConfigPath(fs *pflag.FlagSet) string {
	if c.flags == nil || fs == nil || !fs.Changed("config") {
		return ""
	}
	return c.flags.configFile
}

func (c *Config) flagRepoPath(fs *pflag.FlagSet) string {
	if c.flags == nil || fs == nil || !fs.Changed("repo") {
		return ""
	}
	return c.flags.repoPath
}
