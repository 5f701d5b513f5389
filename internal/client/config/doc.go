// Package config loads runtime configuration for the studydeck client.
//
// Sources & precedence
//
//  1. Built-in defaults (see Default).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Environment variables prefixed with STUDYDECK_.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-db string          path to the local SQLite database
//	-api string         base URL of the backend REST API
//	-log-level string   debug, info, warn or error
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "database_path": "studydeck.db",
//	  "api_base_url": "https://api.example.com",
//	  "request_timeout": "10s",
//	  "sync_interval": "1m",
//	  "sync_backoff_base": "5s",
//	  "sync_backoff_max": "10m",
//	  "auth_secret": "",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "log_file": ""
//	}
//
// # Environment
//
//	STUDYDECK_DATABASE_PATH, STUDYDECK_API_BASE_URL, STUDYDECK_REQUEST_TIMEOUT,
//	STUDYDECK_SYNC_INTERVAL, STUDYDECK_SYNC_BACKOFF_BASE, STUDYDECK_SYNC_BACKOFF_MAX,
//	STUDYDECK_AUTH_SECRET, STUDYDECK_LOG_LEVEL, STUDYDECK_LOG_FORMAT, STUDYDECK_LOG_FILE
package config
