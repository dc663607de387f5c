package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI drives dbg from stdin: a classic gdb-style read-eval-print loop
// that free-runs between breakpoints once "run"/"continue" is entered.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(rv32-dbg) ")
		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		for dbg.Running {
			if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
				dbg.Running = false
				fmt.Printf("Stopped: %s at pc=0x%08X\n", reason, dbg.CPU.Hart.PC)
				if dbg.ShowRegisters {
					_ = dbg.ExecuteCommand("info registers")
					fmt.Print(dbg.GetOutput())
				}
				break
			}
			if trap := dbg.CPU.Step(); trap != nil {
				dbg.Running = false
				fmt.Printf("Trap: cause=%d tval=0x%08X at pc=0x%08X\n", trap.Cause, trap.Tval, dbg.CPU.Hart.PC)
				break
			}
			if dbg.CPU.Halted {
				dbg.Running = false
				fmt.Printf("Program exited with code %d\n", dbg.CPU.ExitCode)
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI starts the tcell/tview front end over dbg.
func RunTUI(dbg *Debugger) error {
	return RunTUIWithDisasmContext(dbg, 0)
}

// RunTUIWithDisasmContext starts the TUI with the disassembly window
// sized to disasmContext instructions (<= 0 keeps the package default).
func RunTUIWithDisasmContext(dbg *Debugger, disasmContext int) error {
	tui := NewTUI(dbg)
	tui.SetDisasmContext(disasmContext)
	return tui.Run()
}
