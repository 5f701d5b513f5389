package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/logging"
)

const envPrefix = "STUDYDECK"

// Config holds runtime settings for the studydeck client.
//
// A zero SyncInterval means sync runs only when asked for.
type Config struct {
	DatabasePath    string        `split_words:"true"`
	APIBaseURL      string        `split_words:"true"`
	RequestTimeout  time.Duration `split_words:"true"`
	SyncInterval    time.Duration `split_words:"true"`
	SyncBackoffBase time.Duration `split_words:"true"`
	SyncBackoffMax  time.Duration `split_words:"true"`
	AuthSecret      string        `split_words:"true"`
	LogLevel        string        `split_words:"true"`
	LogFormat       string        `split_words:"true"`
	LogFile         string        `split_words:"true"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "studydeck.db"
	c.APIBaseURL = ""
	c.RequestTimeout = 10 * time.Second
	c.SyncInterval = 0
	c.SyncBackoffBase = 5 * time.Second
	c.SyncBackoffMax = 10 * time.Minute
	c.AuthSecret = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogFile = ""
}

func Default() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

// LoadConfig builds a Config from defaults, the config file named in args, the
// environment and finally the flags found in args. Arguments that are not
// config flags are ignored, so args may be the whole command line.
func LoadConfig(args []string) (*Config, error) {
	cfg := Default()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout %s is negative", c.RequestTimeout))
	}
	if c.SyncInterval < 0 {
		errs = append(errs, fmt.Errorf("sync interval %s is negative", c.SyncInterval))
	}
	if c.SyncBackoffBase < 0 || c.SyncBackoffMax < 0 {
		errs = append(errs, errors.New("sync backoff must not be negative"))
	}
	if c.SyncBackoffMax > 0 && c.SyncBackoffMax < c.SyncBackoffBase {
		errs = append(errs, fmt.Errorf("sync backoff max %s is below base %s", c.SyncBackoffMax, c.SyncBackoffBase))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoggingOptions maps the log settings onto logging.Options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.LogLevel, Format: c.LogFormat, File: c.LogFile}
}
