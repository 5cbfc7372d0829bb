// Package config holds xsmd's operational configuration: file defaults,
// JSON file overrides, and XSMD_-prefixed environment overrides, following
// the same load-then-validate shape as a service config loader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xfce-go/xsmd/internal/domain"
)

// Config holds every operational parameter of the session manager
// (manager timeouts, the session-file location, and logging).
type Config struct {
	// DisplayName overrides the X display name used to derive the
	// session-file path; empty means "read $DISPLAY at startup".
	DisplayName string `json:"display_name"`

	// CheckpointDir is the directory holding the session file and its
	// .bak backup. Defaults to $XDG_CACHE_HOME/sessions (or
	// ~/.cache/sessions).
	CheckpointDir string `json:"checkpoint_dir"`

	SaveTimeout    time.Duration `json:"save_timeout"`
	DieTimeout     time.Duration `json:"die_timeout"`
	StartupTimeout time.Duration `json:"startup_timeout"`

	MaxRestartAttempts int `json:"max_restart_attempts"`

	ChooserEnabled bool   `json:"chooser_enabled"`
	ChooserPath    string `json:"chooser_path"`

	// FailsafeSearchPath is searched, in order, for the failsafe session
	// file fallback; derived from $XDG_CONFIG_DIRS by default.
	FailsafeSearchPath []string `json:"failsafe_search_path"`

	LogLevel string `json:"log_level"`

	IPCSocketPath string `json:"ipc_socket_path"`
}

// NewDefaultConfig returns a Config populated with xsmd's built-in
// defaults, before any file or environment overrides are applied.
func NewDefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		CheckpointDir:      defaultCheckpointDir(home),
		SaveTimeout:        15 * time.Second,
		DieTimeout:         5 * time.Second,
		StartupTimeout:     30 * time.Second,
		MaxRestartAttempts: domain.MaxRestartAttempts,
		ChooserEnabled:     false,
		ChooserPath:        "",
		FailsafeSearchPath: xdgConfigDirs(),
		LogLevel:           "info",
		IPCSocketPath:      filepath.Join(xdgRuntimeDir(), "xsmd.sock"),
	}
}

func defaultCheckpointDir(home string) string {
	if cache := os.Getenv("XDG_CACHE_HOME"); cache != "" {
		return filepath.Join(cache, "sessions")
	}
	return filepath.Join(home, ".cache", "sessions")
}

func xdgConfigDirs() []string {
	dirs := os.Getenv("XDG_CONFIG_DIRS")
	if dirs == "" {
		return []string{"/etc/xdg"}
	}
	return strings.Split(dirs, ":")
}

func xdgRuntimeDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// LoadDaemonConfig reads configPath (if non-empty and it exists) as JSON
// over the built-in defaults, then validates the result.
func LoadDaemonConfig(configPath string) (*Config, error) {
	cfg := NewDefaultConfig()

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromEnvironment applies XSMD_-prefixed environment overrides on top
// of cfg. Malformed values (bad durations, bad ints) are ignored rather
// than rejected, matching the file loader's tolerance of partial config.
func LoadFromEnvironment(cfg *Config) *Config {
	if v := os.Getenv("XSMD_DISPLAY_NAME"); v != "" {
		cfg.DisplayName = v
	}
	if v := os.Getenv("XSMD_CHECKPOINT_DIR"); v != "" {
		cfg.CheckpointDir = v
	}
	if v := os.Getenv("XSMD_SAVE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SaveTimeout = d
		}
	}
	if v := os.Getenv("XSMD_DIE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DieTimeout = d
		}
	}
	if v := os.Getenv("XSMD_STARTUP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StartupTimeout = d
		}
	}
	if v := os.Getenv("XSMD_MAX_RESTART_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRestartAttempts = n
		}
	}
	if v := os.Getenv("XSMD_CHOOSER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ChooserEnabled = b
		}
	}
	if v := os.Getenv("XSMD_CHOOSER_PATH"); v != "" {
		cfg.ChooserPath = v
	}
	if v := os.Getenv("XSMD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("XSMD_IPC_SOCKET_PATH"); v != "" {
		cfg.IPCSocketPath = v
	}
	return cfg
}

// Validate reports whether cfg is operationally sound, creating the
// checkpoint directory if it does not yet exist.
func (c *Config) Validate() error {
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save timeout must be positive, got %v", c.SaveTimeout)
	}
	if c.DieTimeout <= 0 {
		return fmt.Errorf("die timeout must be positive, got %v", c.DieTimeout)
	}
	if c.StartupTimeout <= 0 {
		return fmt.Errorf("startup timeout must be positive, got %v", c.StartupTimeout)
	}
	if c.MaxRestartAttempts <= 0 {
		return fmt.Errorf("max restart attempts must be positive, got %d", c.MaxRestartAttempts)
	}
	if c.CheckpointDir == "" {
		return fmt.Errorf("checkpoint directory cannot be empty")
	}
	if err := os.MkdirAll(c.CheckpointDir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory %s: %w", c.CheckpointDir, err)
	}
	if c.ChooserEnabled && c.ChooserPath == "" {
		return fmt.Errorf("chooser path required when chooser is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level %s, must be one of: debug, info, warn, error", c.LogLevel)
	}
	return nil
}

// SaveToFile writes cfg to configPath as indented JSON, creating its
// parent directory if necessary.
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file %s: %w", configPath, err)
	}
	return nil
}

// SessionFilePath returns the on-disk path of the session file this
// config resolves to, given the X display name.
func (c *Config) SessionFilePath(display string) string {
	name := c.DisplayName
	if name == "" {
		name = display
	}
	name = strings.ReplaceAll(name, ":", "_")
	return filepath.Join(c.CheckpointDir, "xfce4-session-"+name)
}
