package sessionfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

type fakeTimeProvider struct{ now time.Time }

func (f fakeTimeProvider) Now() time.Time { return f.now }
func (f fakeTimeProvider) AfterFunc(d time.Duration, fn func()) arch.Timer {
	return nil
}

func TestCodec_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions")
	codec := New(path, nil, nil)

	running := []domain.Properties{
		{
			ClientID:         "1aaa",
			Hostname:         "workstation",
			Program:          "xfwm4",
			CurrentDirectory: "/home/user",
			Environment:      []string{"DISPLAY=:0", "LANG=en_US.UTF-8"},
			RestartCommand:   []string{"xfwm4", "--display", ":0"},
			RestartStyleHint: domain.RestartIfRunning,
			Priority:         10,
		},
		{
			ClientID:         "2bbb",
			Program:          "panel, applet", // plain string field: stored as-is, not list-escaped
			RestartCommand:   []string{"xfce4-panel"},
			RestartStyleHint: domain.RestartAnyway,
			Priority:         20,
		},
	}

	now := time.Unix(1_700_000_000, 0)
	req := WriteRequest{
		SessionName:      "Default",
		Running:          running,
		ScreenWorkspaces: map[int]int{0: 2},
		Now:              fakeTimeProvider{now: now},
	}
	require.NoError(t, codec.Write(req))

	loaded, err := codec.Load("Default")
	require.NoError(t, err)
	require.Len(t, loaded.Clients, 2)

	assert.Equal(t, running[0].ClientID, loaded.Clients[0].ClientID)
	assert.Equal(t, running[0].RestartCommand, loaded.Clients[0].RestartCommand)
	assert.Equal(t, running[0].Environment, loaded.Clients[0].Environment)
	assert.Equal(t, "panel, applet", loaded.Clients[1].Program, "comma in value must survive escaping round-trip")
	assert.Equal(t, 2, loaded.ScreenWorkspaces[0])
	assert.Equal(t, now.Unix(), loaded.LastAccess.Unix())

	// Second load/store/load cycle: field-wise equal modulo LastAccess.
	req2 := req
	req2.Now = fakeTimeProvider{now: now.Add(time.Hour)}
	require.NoError(t, codec.Write(req2))
	loaded2, err := codec.Load("Default")
	require.NoError(t, err)
	assert.Equal(t, loaded.Clients, loaded2.Clients)
}

func TestCodec_DropsInvalidRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions")
	codec := New(path, nil, nil)

	req := WriteRequest{
		SessionName: "Default",
		// Restart entries are written unfiltered; this one has no restart
		// command, so Load must drop it.
		Restart: []domain.Properties{
			{ClientID: "2bbb"},
		},
		Running: []domain.Properties{
			{ClientID: "1aaa", RestartCommand: []string{"app"}},
		},
		Now: fakeTimeProvider{now: time.Now()},
	}
	require.NoError(t, codec.Write(req))

	loaded, err := codec.Load("Default")
	require.NoError(t, err)
	assert.Len(t, loaded.Clients, 1)
}

func TestCodec_BackupOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions")
	codec := New(path, nil, nil)

	req := WriteRequest{SessionName: "Default", Now: fakeTimeProvider{now: time.Now()}}
	require.NoError(t, codec.Write(req))
	require.NoError(t, codec.Write(req)) // second write must produce a .bak of the first

	assert.FileExists(t, path+".bak")
}

func TestCodec_LoadFallsBackToFailsafeSearchPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions")

	sysDir := t.TempDir()
	failsafeDir := filepath.Join(sysDir, "xfce4", "xfce4-session")
	require.NoError(t, os.MkdirAll(failsafeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(failsafeDir, "failsafe.session"), []byte(
		"[Failsafe Session]\nCount=1\nClient0_Command=xterm\n",
	), 0o644))

	codec := New(path, []string{sysDir}, nil)

	loaded, err := codec.Load("")
	require.NoError(t, err)
	require.Empty(t, loaded.Clients)
	require.Len(t, loaded.Failsafe, 1)
	assert.Equal(t, []string{"xterm"}, loaded.Failsafe[0].Command)
}

func TestCodec_LoadWithNoSessionAndNoFailsafeAnywhereReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions")
	codec := New(path, []string{filepath.Join(t.TempDir(), "does-not-exist")}, nil)

	loaded, err := codec.Load("")
	require.NoError(t, err)
	assert.Empty(t, loaded.Clients)
	assert.Empty(t, loaded.Failsafe)
}

func TestCodec_ListSessionNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions")
	codec := New(path, nil, nil)

	require.NoError(t, codec.Write(WriteRequest{SessionName: "Default", Now: fakeTimeProvider{now: time.Now()}}))
	require.NoError(t, codec.Write(WriteRequest{SessionName: "Work", Now: fakeTimeProvider{now: time.Now()}}))

	names, err := codec.ListSessionNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Default", "Work"}, names)
}
