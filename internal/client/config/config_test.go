package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := Default()

	assert.Equal(t, "studydeck.db", c.DatabasePath)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Zero(t, c.SyncInterval)
	assert.Equal(t, 5*time.Second, c.SyncBackoffBase)
	assert.Equal(t, 10*time.Minute, c.SyncBackoffMax)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_NoSources(t *testing.T) {
	cfg, err := LoadConfig([]string{"list", "ls"})
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"database_path": "/tmp/deck.db",
		"api_base_url": "https://api.example.com",
		"sync_interval": "1m",
		"sync_backoff_base": 2000000000
	}`)

	cfg, err := LoadConfig([]string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/deck.db", cfg.DatabasePath)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
	assert.Equal(t, 2*time.Second, cfg.SyncBackoffBase)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout, "absent keys keep defaults")
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	path := writeFile(t, "cfg.yaml", `
database_path: deck.db
request_timeout: 3s
log_format: json
log_file: /var/log/studydeck.log
`)

	cfg, err := LoadConfig([]string{"sync", "-c", path})
	require.NoError(t, err)

	assert.Equal(t, "deck.db", cfg.DatabasePath)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/var/log/studydeck.log", cfg.LogFile)
}

func TestLoadConfig_BadFile(t *testing.T) {
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	bad := writeFile(t, "bad.json", `{ this is not valid json`)
	_, err = LoadConfig([]string{"-c", bad})
	require.ErrorContains(t, err, "decode config file")

	badDuration := writeFile(t, "bad.yml", "sync_interval: soon\n")
	_, err = LoadConfig([]string{"-c", badDuration})
	require.Error(t, err)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"database_path": "file.db",
		"api_base_url": "http://file",
		"log_level": "warn",
		"auth_secret": "from-file"
	}`)
	t.Setenv("STUDYDECK_API_BASE_URL", "http://env")
	t.Setenv("STUDYDECK_LOG_LEVEL", "error")
	t.Setenv("STUDYDECK_SYNC_BACKOFF_MAX", "1h")

	cfg, err := LoadConfig([]string{"--config=" + path, "card", "ls", "-log-level", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "file.db", cfg.DatabasePath, "file beats defaults")
	assert.Equal(t, "from-file", cfg.AuthSecret)
	assert.Equal(t, "http://env", cfg.APIBaseURL, "env beats file")
	assert.Equal(t, time.Hour, cfg.SyncBackoffMax)
	assert.Equal(t, "debug", cfg.LogLevel, "flags beat env")
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := LoadConfig([]string{"-db", "flag.db", "--api=http://flag", "list", "add", "Math"})
	require.NoError(t, err)

	assert.Equal(t, "flag.db", cfg.DatabasePath)
	assert.Equal(t, "http://flag", cfg.APIBaseURL)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv("STUDYDECK_SYNC_INTERVAL", "often")

	_, err := LoadConfig(nil)
	require.ErrorContains(t, err, "read environment")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, false},
		{"negative interval", func(c *Config) { c.SyncInterval = -time.Second }, false},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, false},
		{"max below base", func(c *Config) { c.SyncBackoffBase = time.Minute; c.SyncBackoffMax = time.Second }, false},
		{"zero base", func(c *Config) { c.SyncBackoffBase = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	c := Default()
	c.LogFile = "x.log"
	o := c.LoggingOptions()
	assert.Equal(t, "info", o.Level)
	assert.Equal(t, "text", o.Format)
	assert.Equal(t, "x.log", o.File)
}
