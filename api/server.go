// Package api exposes a running emulator session over HTTP and websocket:
// session lifecycle, program loading, run control, register/memory
// inspection, breakpoints, and a live event stream for trace/output
// notifications.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Server wires every session's DebuggerService behind a net/http mux.
type Server struct {
	sessions    *SessionManager
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	port        int
}

// NewServer builds a server listening on port, with no sessions yet.
func NewServer(port int) *Server {
	broadcaster := NewBroadcaster()
	s := &Server{
		sessions:    NewSessionManager(broadcaster),
		broadcaster: broadcaster,
		mux:         http.NewServeMux(),
		port:        port,
	}
	s.registerRoutes()
	return s
}

// Handler returns the CORS-wrapped mux, for tests or embedding in a
// larger server.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/v1/session", s.handleSession)
	s.mux.HandleFunc("/api/v1/session/", s.handleSessionRoute)
}

// Start begins serving and blocks until the server stops or errors.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    ":" + strconv.Itoa(s.port),
		Handler: s.Handler(),
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and the broadcaster.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost") || strings.HasPrefix(origin, "http://127.0.0.1")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Count()})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req SessionCreateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		sess, err := s.sessions.CreateSession(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, SessionCreateResponse{SessionID: sess.ID, CreatedAt: sess.CreatedAt})

	case http.MethodGet:
		sessions := s.sessions.List()
		ids := make([]string, len(sessions))
		for i, sess := range sessions {
			ids[i] = sess.ID
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSessionRoute dispatches /api/v1/session/{id}/{action}.
func (s *Server) handleSessionRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/session/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "missing session id")
		return
	}

	sess, err := s.sessions.Get(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch action {
	case "":
		if r.Method == http.MethodDelete {
			s.sessions.Destroy(sess.ID)
			writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
			return
		}
		halted, exitCode := sess.Service.Halted()
		writeJSON(w, http.StatusOK, StatusResponse{SessionID: sess.ID, Halted: halted, ExitCode: exitCode, PC: sess.Service.Registers().PC})

	case "load":
		var req LoadProgramRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := sess.Service.LoadFlatBinary(req.Address, req.Data); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})

	case "reset":
		sess.Service.Reset()
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})

	case "step":
		trap := sess.Service.Step()
		resp := RunResponse{Cycles: 1, Reason: "ok"}
		if trap != nil {
			resp.Reason = "trap"
		}
		writeJSON(w, http.StatusOK, resp)

	case "run":
		var req RunRequest
		_ = readJSON(r, &req)
		cycles, reason := sess.Service.Run(req.MaxCycles)
		s.broadcaster.BroadcastExecutionEvent(sess.ID, reason, map[string]any{"cycles": cycles})
		writeJSON(w, http.StatusOK, RunResponse{Cycles: cycles, Reason: reason})

	case "registers":
		writeJSON(w, http.StatusOK, sess.Service.Registers())

	case "memory":
		addr, length := parseMemoryQuery(r)
		writeJSON(w, http.StatusOK, MemoryResponse{Address: addr, Data: sess.Service.Memory(addr, length)})

	case "disassembly":
		addr, count := parseDisassemblyQuery(r)
		writeJSON(w, http.StatusOK, DisassemblyResponse{Instructions: sess.Service.Disassemble(addr, count)})

	case "breakpoint":
		switch r.Method {
		case http.MethodPost:
			var req BreakpointRequest
			if err := readJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			sess.Service.SetBreakpoint(req.Address)
			writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
		case http.MethodDelete:
			var req BreakpointRequest
			if err := readJSON(r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if err := sess.Service.DeleteBreakpoint(req.Address); err != nil {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case "breakpoints":
		writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: sess.Service.Breakpoints()})

	default:
		writeError(w, http.StatusNotFound, "unknown action")
	}
}

func parseMemoryQuery(r *http.Request) (addr, length uint32) {
	q := r.URL.Query()
	addr = uint32(parseUintDefault(q.Get("address"), 0))
	length = uint32(parseUintDefault(q.Get("length"), 64))
	return addr, length
}

func parseDisassemblyQuery(r *http.Request) (addr uint32, count int) {
	q := r.URL.Query()
	addr = uint32(parseUintDefault(q.Get("address"), 0))
	count = int(parseUintDefault(q.Get("count"), 16))
	return addr, count
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message, Code: status})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func parseUintDefault(s string, def uint64) uint64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return def
	}
	return v
}
