package debugger

// DisplayUpdateFrequency is a redraw interval, in executed blocks, for a
// free-running "continue"; no code in this package reads it.
const DisplayUpdateFrequency = 100

const (
	// RegisterGroupSize is how many GPRs are printed per row by "info registers".
	RegisterGroupSize = 4

	// DisassemblyContextBefore/After bound the window shown around PC in the TUI.
	DisassemblyContextBefore = 4
	DisassemblyContextAfter  = 12

	// MemoryDisplayRows/Columns describe a 16x16 hex-dump grid; the TUI
	// has no hex-dump panel and no code in this package reads them.
	MemoryDisplayRows    = 16
	MemoryDisplayColumns = 16
)
