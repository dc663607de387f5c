package debugger

import "sync"

// CommandHistory is a bounded, navigable log of command lines, shared by
// the CLI's up/down-arrow recall and the TUI's command panel.
type CommandHistory struct {
	mu       sync.RWMutex
	commands []string
	maxSize  int
	position int
}

// NewCommandHistory returns an empty history capped at 1000 entries.
func NewCommandHistory() *CommandHistory {
	return NewCommandHistoryWithSize(1000)
}

// NewCommandHistoryWithSize returns an empty history capped at size
// entries; size <= 0 falls back to the 1000-entry default.
func NewCommandHistoryWithSize(size int) *CommandHistory {
	if size <= 0 {
		size = 1000
	}
	return &CommandHistory{commands: make([]string, 0, 64), maxSize: size}
}

// Add appends cmd unless it repeats the immediately preceding entry.
func (h *CommandHistory) Add(cmd string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd == "" {
		return
	}
	if n := len(h.commands); n > 0 && h.commands[n-1] == cmd {
		h.position = n
		return
	}

	h.commands = append(h.commands, cmd)
	if len(h.commands) > h.maxSize {
		h.commands = h.commands[len(h.commands)-h.maxSize:]
	}
	h.position = len(h.commands)
}

// Previous moves the cursor back one entry and returns it, or "" at the start.
func (h *CommandHistory) Previous() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commands) == 0 || h.position == 0 {
		return ""
	}
	h.position--
	return h.commands[h.position]
}

// Next moves the cursor forward one entry, or "" once past the end.
func (h *CommandHistory) Next() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.commands) == 0 || h.position >= len(h.commands)-1 {
		h.position = len(h.commands)
		return ""
	}
	h.position++
	return h.commands[h.position]
}

// All returns a copy of every stored command, oldest first.
func (h *CommandHistory) All() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.commands))
	copy(out, h.commands)
	return out
}

// Size reports the number of stored commands.
func (h *CommandHistory) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.commands)
}
