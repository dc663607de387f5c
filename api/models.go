package api

import (
	"time"

	"github.com/lookbusy1344/rv32-emu/service"
)

// SessionCreateRequest configures a new emulator session.
type SessionCreateRequest struct {
	SystemMode bool `json:"systemMode,omitempty"`
	ARC        bool `json:"arc,omitempty"`
}

// SessionCreateResponse is returned after a session is created.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoadProgramRequest carries a flat binary image and its load address.
type LoadProgramRequest struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// RunRequest bounds a continue/run call.
type RunRequest struct {
	MaxCycles uint64 `json:"maxCycles,omitempty"`
}

// RunResponse reports why a run stopped.
type RunResponse struct {
	Cycles uint64 `json:"cycles"`
	Reason string `json:"reason"`
}

// RegistersResponse is service.RegisterState re-exported for the wire format.
type RegistersResponse = service.RegisterState

// MemoryResponse carries a byte range read from guest memory.
type MemoryResponse struct {
	Address uint32 `json:"address"`
	Data    []byte `json:"data"`
}

// DisassemblyResponse carries a decoded instruction window.
type DisassemblyResponse struct {
	Instructions []service.DisassemblyLine `json:"instructions"`
}

// BreakpointRequest names the address to arm or disarm.
type BreakpointRequest struct {
	Address uint32 `json:"address"`
}

// BreakpointsResponse lists every armed breakpoint address.
type BreakpointsResponse struct {
	Breakpoints []uint32 `json:"breakpoints"`
}

// StatusResponse reports whether the CPU has halted and its exit code.
type StatusResponse struct {
	SessionID string `json:"sessionId"`
	Halted    bool   `json:"halted"`
	ExitCode  int    `json:"exitCode"`
	PC        uint32 `json:"pc"`
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse is a generic acknowledgement body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
