package ipc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xfce-go/xsmd/internal/domain"
)

// infoResponse answers GetInfo: static facts about this
// running manager, not its mutable state.
type infoResponse struct {
	SocketPath string `json:"socket_path"`
	Version    string `json:"version"`
}

func (s *Server) handleGetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{SocketPath: s.socketPath, Version: "1"})
}

type clientView struct {
	ClientID string `json:"client_id"`
	Program  string `json:"program"`
	Hostname string `json:"hostname"`
	State    string `json:"state"`
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	var out []clientView
	s.submit(func() {
		for _, c := range s.mgr.RunningClients() {
			out = append(out, clientView{
				ClientID: string(c.ID()),
				Program:  c.Props.Program,
				Hostname: c.Props.Hostname,
				State:    c.State.String(),
			})
		}
	})
	if out == nil {
		out = []clientView{}
	}
	writeJSON(w, http.StatusOK, out)
}

type stateResponse struct {
	State string `json:"state"`
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	var st domain.ManagerState
	s.submit(func() { st = s.mgr.State() })
	writeJSON(w, http.StatusOK, stateResponse{State: st.String()})
}

type checkpointRequest struct {
	SessionName string `json:"session_name"`
}

func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	var req checkpointRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	var err error
	s.submit(func() { err = s.mgr.Checkpoint(req.SessionName) })
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type shutdownRequest struct {
	Type      int  `json:"type"`
	AllowSave bool `json:"allow_save"`
}

// handleShutdown validates the requested ShutdownType before handing it to
// the manager: only an out-of-range value is rejected here. Suspend and
// Hibernate are let through to the Shutdown Driver rather than rejected
// outright, since the logind backend can service both; this is a
// deliberate divergence from xfce4-session's own HAL-era behavior, where
// those two actions had no backend at all and were always refused.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	var req shutdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	action := domain.ShutdownType(req.Type)
	if action < domain.ShutdownLogout || action > domain.ShutdownHibernate {
		writeError(w, http.StatusBadRequest, errUnsupportedShutdownType(req.Type))
		return
	}

	var err error
	s.submit(func() { err = s.mgr.RequestShutdown(action) })
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func errUnsupportedShutdownType(t int) error {
	return &unsupportedShutdownTypeError{t}
}

type unsupportedShutdownTypeError struct{ t int }

func (e *unsupportedShutdownTypeError) Error() string {
	return "ipc: unsupported shutdown type"
}

// handleEvents streams published events as newline-delimited JSON until
// the client disconnects or the request context is cancelled.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := s.broker.subscribe()
	defer s.broker.unsubscribe(ch)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			if err := enc.Encode(e); err != nil {
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := w.Write([]byte("\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
