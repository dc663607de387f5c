// Package service wraps a vm.CPU and a debugger.Debugger behind a
// mutex-guarded, JSON-friendly API so the HTTP/websocket layer in
// package api never touches emulator internals directly.
package service

import "github.com/lookbusy1344/rv32-emu/vm"

// RegisterState is a snapshot of the integer register file plus PC and
// privilege, suitable for direct JSON marshaling.
type RegisterState struct {
	X      [32]uint32 `json:"x"`
	PC     uint32     `json:"pc"`
	Priv   string     `json:"priv"`
	Cycles uint64     `json:"cycles"`
}

// DisassemblyLine is one decoded instruction at a fixed address.
type DisassemblyLine struct {
	Address uint32 `json:"address"`
	Word    uint32 `json:"word"`
	Mnemonic string `json:"mnemonic"`
}

// ExecutionState mirrors the CPU's run/halt/trap status for clients that
// don't want to poll raw CPU fields.
type ExecutionState string

const (
	StateRunning ExecutionState = "running"
	StateHalted  ExecutionState = "halted"
	StateTrapped ExecutionState = "trapped"
)

func privilegeName(p vm.Privilege) string {
	return p.String()
}
