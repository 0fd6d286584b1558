package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Config holds application configuration.
type Config struct {
	// GoogleClientID is the OAuth client identifier used by the identity
	// client. Required before the session can initialize.
	GoogleClientID string `json:"google_client_id,omitempty"`

	// GoogleClientSecret is the OAuth client secret for the installed-app
	// flow. Optional for clients that do not require one.
	GoogleClientSecret string `json:"google_client_secret,omitempty"`

	// BaseURL is the origin used to build deep links back into the app
	// from calendar reminder descriptions (e.g. http://localhost:8321).
	BaseURL string `json:"base_url,omitempty"`

	// TimeZone is the IANA timezone name sent with calendar event payloads.
	// Empty means the process's local timezone.
	TimeZone string `json:"time_zone,omitempty"`

	// HTTPTimeoutSeconds bounds every remote call (token requests, event
	// create/fetch, revocation). 0 means the default of 30 seconds.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds,omitempty"`

	// ImageMaxBytes caps the size of an uploaded capsule image before
	// base64 encoding. 0 means the default of 5 MiB.
	ImageMaxBytes int64 `json:"image_max_bytes,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools lists MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// Defaults applied when a field is unset.
const (
	DefaultBaseURL            = "http://localhost:8321"
	DefaultHTTPTimeoutSeconds = 30
	DefaultImageMaxBytes      = 5 << 20
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            DefaultBaseURL,
		HTTPTimeoutSeconds: DefaultHTTPTimeoutSeconds,
		ImageMaxBytes:      DefaultImageMaxBytes,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.chronobox.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)

	// The client ID may also arrive via the environment, which takes
	// precedence over the file.
	if envID := os.Getenv("CHRONOBOX_GOOGLE_CLIENT_ID"); envID != "" {
		merged.GoogleClientID = envID
	}
	if envSecret := os.Getenv("CHRONOBOX_GOOGLE_CLIENT_SECRET"); envSecret != "" {
		merged.GoogleClientSecret = envSecret
	}
	return merged, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// for any field set to a non-zero value.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.GoogleClientID = overlay.GoogleClientID
	if result.GoogleClientID == "" {
		result.GoogleClientID = base.GoogleClientID
	}

	result.GoogleClientSecret = overlay.GoogleClientSecret
	if result.GoogleClientSecret == "" {
		result.GoogleClientSecret = base.GoogleClientSecret
	}

	result.BaseURL = overlay.BaseURL
	if result.BaseURL == "" {
		result.BaseURL = base.BaseURL
	}

	result.TimeZone = overlay.TimeZone
	if result.TimeZone == "" {
		result.TimeZone = base.TimeZone
	}

	result.HTTPTimeoutSeconds = overlay.HTTPTimeoutSeconds
	if result.HTTPTimeoutSeconds == 0 {
		result.HTTPTimeoutSeconds = base.HTTPTimeoutSeconds
	}

	result.ImageMaxBytes = overlay.ImageMaxBytes
	if result.ImageMaxBytes == 0 {
		result.ImageMaxBytes = base.ImageMaxBytes
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = overlay.DisabledTools
	if len(result.DisabledTools) == 0 {
		result.DisabledTools = base.DisabledTools
	}

	return result
}

// HTTPTimeout returns the remote-call timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	seconds := c.HTTPTimeoutSeconds
	if seconds <= 0 {
		seconds = DefaultHTTPTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Location resolves the configured timezone, falling back to the process
// local timezone when unset or invalid.
func (c *Config) Location() *time.Location {
	if c.TimeZone != "" {
		if loc, err := time.LoadLocation(c.TimeZone); err == nil {
			return loc
		}
	}
	return time.Local
}
