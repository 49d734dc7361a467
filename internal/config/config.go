package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything comicvault needs to reach the backend and pace
// its timers.
type Config struct {
	APIURL          string
	LogDir          string
	LogLevel        string
	LogFormat       string
	JournalPath     string
	RequestTimeout  time.Duration
	PollInterval    time.Duration
	PollMaxAttempts int
	RedirectDelay   time.Duration
	SearchDebounce  time.Duration
	SearchDropStale bool
	UploadMaxBytes  int64
}

const (
	defaultConfigPath      = "~/.config/comicvault/config.toml"
	defaultLogDir          = "~/.local/share/comicvault"
	defaultAPIURL          = "http://127.0.0.1:8000"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultJournalName     = "job.toml"
	defaultRequestTimeout  = 10 * time.Second
	defaultPollInterval    = 2000 * time.Millisecond
	defaultPollMaxAttempts = 30
	defaultRedirectDelay   = 1500 * time.Millisecond
	defaultSearchDebounce  = 300 * time.Millisecond
	defaultUploadMaxBytes  = 5 * 1024 * 1024
)

// Default returns the configuration used when no file exists.
func Default() Config {
	logDir := mustExpand(defaultLogDir)
	return Config{
		APIURL:          defaultAPIURL,
		LogDir:          logDir,
		LogLevel:        defaultLogLevel,
		LogFormat:       defaultLogFormat,
		JournalPath:     filepath.Join(logDir, defaultJournalName),
		RequestTimeout:  defaultRequestTimeout,
		PollInterval:    defaultPollInterval,
		PollMaxAttempts: defaultPollMaxAttempts,
		RedirectDelay:   defaultRedirectDelay,
		SearchDebounce:  defaultSearchDebounce,
		SearchDropStale: true,
		UploadMaxBytes:  defaultUploadMaxBytes,
	}
}

// Load locates and parses the comicvault config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL                string `toml:"api_url"`
		LogDir                string `toml:"log_dir"`
		LogLevel              string `toml:"log_level"`
		LogFormat             string `toml:"log_format"`
		JournalPath           string `toml:"journal_path"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		PollIntervalMS        int    `toml:"poll_interval_ms"`
		PollMaxAttempts       int    `toml:"poll_max_attempts"`
		RedirectDelayMS       int    `toml:"redirect_delay_ms"`
		SearchDebounceMS      int    `toml:"search_debounce_ms"`
		SearchDropStale       *bool  `toml:"search_drop_stale"`
		UploadMaxBytes        int64  `toml:"upload_max_bytes"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
		cfg.JournalPath = filepath.Join(cfg.LogDir, defaultJournalName)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.JournalPath); v != "" {
		cfg.JournalPath = mustExpand(v)
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(raw.PollIntervalMS) * time.Millisecond
	}
	if raw.PollMaxAttempts > 0 {
		cfg.PollMaxAttempts = raw.PollMaxAttempts
	}
	if raw.RedirectDelayMS > 0 {
		cfg.RedirectDelay = time.Duration(raw.RedirectDelayMS) * time.Millisecond
	}
	if raw.SearchDebounceMS > 0 {
		cfg.SearchDebounce = time.Duration(raw.SearchDebounceMS) * time.Millisecond
	}
	if raw.SearchDropStale != nil {
		cfg.SearchDropStale = *raw.SearchDropStale
	}
	if raw.UploadMaxBytes > 0 {
		cfg.UploadMaxBytes = raw.UploadMaxBytes
	}

	return cfg, nil
}

// LogPath returns the path to the client log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/comicvault.log")
	}
	return filepath.Join(c.LogDir, "comicvault.log")
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
