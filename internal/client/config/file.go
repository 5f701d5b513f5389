package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/studydeck/internal/flagx"
	"github.com/dmitrijs2005/studydeck/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of Config. Fields left out of the file keep
// their earlier value.
type fileConfig struct {
	DatabasePath    string         `json:"database_path" yaml:"database_path"`
	APIBaseURL      string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout  timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SyncInterval    timex.Duration `json:"sync_interval" yaml:"sync_interval"`
	SyncBackoffBase timex.Duration `json:"sync_backoff_base" yaml:"sync_backoff_base"`
	SyncBackoffMax  timex.Duration `json:"sync_backoff_max" yaml:"sync_backoff_max"`
	AuthSecret      string         `json:"auth_secret" yaml:"auth_secret"`
	LogLevel        string         `json:"log_level" yaml:"log_level"`
	LogFormat       string         `json:"log_format" yaml:"log_format"`
	LogFile         string         `json:"log_file" yaml:"log_file"`
}

func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *fileConfig) apply(cfg *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.AuthSecret, fc.AuthSecret)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogFile, fc.LogFile)

	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = fc.SyncInterval.Duration
	}
	if fc.SyncBackoffBase.Duration != 0 {
		cfg.SyncBackoffBase = fc.SyncBackoffBase.Duration
	}
	if fc.SyncBackoffMax.Duration != 0 {
		cfg.SyncBackoffMax = fc.SyncBackoffMax.Duration
	}
}
