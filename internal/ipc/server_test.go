package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xfce-go/xsmd/internal/domain"
	"github.com/xfce-go/xsmd/internal/manager"
	"github.com/xfce-go/xsmd/internal/sessionfile"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type nopShutdownExecutor struct{}

func (nopShutdownExecutor) RunShutdownCommand([]string) error { return nil }

func newTestServer(t *testing.T) (*Server, *manager.Loop, context.CancelFunc) {
	t.Helper()
	codec := sessionfile.New(filepath.Join(t.TempDir(), "sessions"), nil, nopLogger{})
	loop := manager.NewLoop()
	tp := manager.SerializingTimeProvider{Base: manager.RealTime{}, Loop: loop}
	cfg := manager.Config{SaveTimeout: time.Second, DieTimeout: time.Second, StartupTimeout: time.Second}
	mgr := manager.New(cfg, nopLogger{}, tp, nil, nil, nil, nil, codec, nopShutdownExecutor{})
	mgr.LaunchPending() // no pending/failsafe clients: advances straight to Idle

	s := NewServer(filepath.Join(t.TempDir(), "xsmd.sock"), mgr, loop, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx, make(chan struct{}))
	return s, loop, cancel
}

func TestHandleGetState_ReturnsManagerState(t *testing.T) {
	s, _, cancel := newTestServer(t)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/state", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp stateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.Idle.String(), resp.State)
}

func TestHandleListClients_EmptyIsEmptyArrayNotNull(t *testing.T) {
	s, _, cancel := newTestServer(t)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleShutdown_RejectsOutOfRangeType(t *testing.T) {
	s, _, cancel := newTestServer(t)
	defer cancel()

	req := httptest.NewRequest(http.MethodPost, "/v1/shutdown", jsonBody(t, shutdownRequest{Type: 99}))
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleShutdown_AcceptsValidTypeFromIdle(t *testing.T) {
	s, _, cancel := newTestServer(t)
	defer cancel()

	req := httptest.NewRequest(http.MethodPost, "/v1/shutdown", jsonBody(t, shutdownRequest{Type: int(domain.ShutdownHalt)}))
	rec := httptest.NewRecorder()
	s.router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
