package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/lookbusy1344/rv32-emu/service"
	"github.com/lookbusy1344/rv32-emu/vm"
)

// ErrSessionNotFound is returned when a session ID has no live session.
var ErrSessionNotFound = errors.New("session not found")

// Session bundles one emulator instance with its service wrapper and
// creation metadata.
type Session struct {
	ID        string
	Service   *service.DebuggerService
	CPU       *vm.CPU
	CreatedAt time.Time
}

// traceForwarder implements vm.Tracer by re-broadcasting every event
// under its owning session's ID.
type traceForwarder struct {
	sessionID   string
	broadcaster *Broadcaster
}

func (t *traceForwarder) Trace(ev vm.TraceEvent) {
	t.broadcaster.BroadcastTrace(t.sessionID, ev.Kind, ev.PC, ev.Info)
}

// SessionManager owns every live emulator session, keyed by a random ID.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	broadcaster *Broadcaster
}

// NewSessionManager returns an empty manager that publishes trace and
// execution events through broadcaster.
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// CreateSession builds a fresh CPU per req and registers it under a new
// session ID.
func (m *SessionManager) CreateSession(req SessionCreateRequest) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	cfg := vm.DefaultCPUConfig()
	cfg.SystemMode = req.SystemMode
	cfg.ARC = req.ARC
	cpu := vm.NewCPU(cfg)
	cpu.Tracer = &traceForwarder{sessionID: id, broadcaster: m.broadcaster}

	sess := &Session{
		ID:        id,
		Service:   service.NewDebuggerService(cpu),
		CPU:       cpu,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns the session for id, or ErrSessionNotFound.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Destroy removes a session. Destroying an unknown ID is a no-op.
func (m *SessionManager) Destroy(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// List returns every live session, oldest first is not guaranteed.
func (m *SessionManager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Count reports how many sessions are live.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func generateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
