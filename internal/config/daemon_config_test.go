package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveTimeouts(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	cfg.SaveTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsChooserEnabledWithoutPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	cfg.ChooserEnabled = true
	cfg.ChooserPath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsUnknownLogLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_CreatesCheckpointDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = filepath.Join(t.TempDir(), "nested", "sessions")
	require.NoError(t, cfg.Validate())
	assert.DirExists(t, cfg.CheckpointDir)
}

func TestLoadFromEnvironment_OverridesDefaults(t *testing.T) {
	t.Setenv("XSMD_SAVE_TIMEOUT", "42s")
	t.Setenv("XSMD_MAX_RESTART_ATTEMPTS", "3")
	t.Setenv("XSMD_LOG_LEVEL", "debug")

	cfg := LoadFromEnvironment(NewDefaultConfig())
	assert.Equal(t, 42*time.Second, cfg.SaveTimeout)
	assert.Equal(t, 3, cfg.MaxRestartAttempts)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromEnvironment_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("XSMD_SAVE_TIMEOUT", "not-a-duration")

	cfg := NewDefaultConfig()
	want := cfg.SaveTimeout
	cfg = LoadFromEnvironment(cfg)
	assert.Equal(t, want, cfg.SaveTimeout)
}

func TestSessionFilePath_UsesDisplayWhenNameEmptyAndEscapesColon(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = "/cache/sessions"
	assert.Equal(t, "/cache/sessions/xfce4-session-_0", cfg.SessionFilePath(":0"))
}

func TestSessionFilePath_DisplayNameOverridesParameter(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CheckpointDir = "/cache/sessions"
	cfg.DisplayName = "custom"
	assert.Equal(t, "/cache/sessions/xfce4-session-custom", cfg.SessionFilePath(":1"))
}

func TestLoadDaemonConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadDaemonConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.SaveTimeout)
}

func TestSaveToFile_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := NewDefaultConfig()
	cfg.CheckpointDir = dir
	cfg.DisplayName = "roundtrip"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "roundtrip", loaded.DisplayName)
}
