package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/lookbusy1344/rv32-emu/api"
	"github.com/lookbusy1344/rv32-emu/config"
	"github.com/lookbusy1344/rv32-emu/debugger"
	"github.com/lookbusy1344/rv32-emu/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in interactive debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use the text user interface debugger")
		apiServer   = flag.Bool("api-server", false, "Start the HTTP/websocket API server")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")

		entry      = flag.String("entry", "", "Entry point address (hex with 0x prefix or decimal); empty uses the config default")
		maxCycles  = flag.Uint64("max-cycles", 0, "Maximum basic blocks to execute before stopping (0 = config default)")
		systemMode = flag.Bool("system", false, "Run in system mode (S/M privilege, Sv32 MMU, CSRs)")
		useARC     = flag.Bool("arc", true, "Use the ARC block-cache replacement policy (false selects LFU)")
		jitThresh  = flag.Uint64("jit-threshold", 0, "Hit count at which a block is reported hot (0 = config default)")
		cacheCap   = flag.Int("cache-capacity", 0, "Block cache capacity, must be a power of two (0 = config default)")
		chaining   = flag.Bool("chaining", true, "Enable basic-block chaining across the cache boundary")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32-emu %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	binPath := flag.Arg(0)
	data, err := os.ReadFile(binPath) // #nosec G304 -- user-supplied program path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", binPath, err)
		os.Exit(1)
	}

	entryStr := *entry
	if entryStr == "" {
		entryStr = cfg.Execution.DefaultEntry
	}
	entryAddr, err := parseAddress(entryStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid -entry %q: %v\n", entryStr, err)
		os.Exit(1)
	}

	cpuCfg := cfg.CPUConfig(*systemMode)
	if cacheSet(flag.CommandLine, "arc") {
		cpuCfg.ARC = *useARC
	}
	if cacheSet(flag.CommandLine, "jit-threshold") {
		cpuCfg.JITThreshold = *jitThresh
	}
	if cacheSet(flag.CommandLine, "cache-capacity") {
		cpuCfg.CacheCapacity = *cacheCap
	}
	if cacheSet(flag.CommandLine, "chaining") {
		cpuCfg.ChainingEnabled = *chaining
	}

	cpu := vm.NewCPU(cpuCfg)
	if err := cpu.Mem.LoadFlatBinary(entryAddr, data); err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot load program: %v\n", err)
		os.Exit(1)
	}
	cpu.Hart.PC = entryAddr
	if !*systemMode && cfg.Execution.StackSize > 0 {
		stackTop := uint32(cfg.Emulator.MemSize) &^ 0xF
		cpu.Hart.SetX(2, stackTop)
	}

	closeTracing := setupTracing(cpu, cfg)

	limit := *maxCycles
	if limit == 0 {
		limit = cfg.Execution.MaxCycles
	}

	switch {
	case *tuiMode:
		dbg := newConfiguredDebugger(cpu, cfg)
		tui := debugger.NewTUI(dbg)
		tui.ColorOutput = cfg.Display.ColorOutput
		tui.SetDisasmContext(cfg.Display.DisasmContext)
		err := tui.Run()
		saveBreakpoints(dbg, cfg)
		closeTracing()
		if err != nil {
			fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
			os.Exit(1)
		}
	case *debugMode:
		dbg := newConfiguredDebugger(cpu, cfg)
		err := debugger.RunCLI(dbg)
		saveBreakpoints(dbg, cfg)
		closeTracing()
		if err != nil {
			fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
			os.Exit(1)
		}
	default:
		runHeadless(cpu, limit, closeTracing)
	}
}

// newConfiguredDebugger builds a Debugger with history, display, and
// breakpoint-persistence settings pulled from cfg.Debugger/cfg.Display,
// restoring any breakpoints saved by a prior AutoSaveBreaks session.
func newConfiguredDebugger(cpu *vm.CPU, cfg *config.Config) *debugger.Debugger {
	dbg := debugger.NewDebuggerWithHistorySize(cpu, cfg.Debugger.HistorySize)
	dbg.ShowRegisters = cfg.Debugger.ShowRegisters
	dbg.NumberFormat = cfg.Display.NumberFormat
	dbg.BytesPerLine = cfg.Display.BytesPerLine
	if cfg.Debugger.AutoSaveBreaks {
		if err := dbg.Breakpoints.LoadFromFile(breakpointsPath()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot load saved breakpoints: %v\n", err)
		}
	}
	return dbg
}

func saveBreakpoints(dbg *debugger.Debugger, cfg *config.Config) {
	if !cfg.Debugger.AutoSaveBreaks {
		return
	}
	if err := dbg.Breakpoints.SaveToFile(breakpointsPath()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot save breakpoints: %v\n", err)
	}
}

func breakpointsPath() string {
	return filepath.Join(config.GetLogPath(), "breakpoints.json")
}

func runHeadless(cpu *vm.CPU, limit uint64, closeTracing func()) {
	var cycles uint64
	for limit == 0 || cycles < limit {
		if cpu.Halted {
			break
		}
		if trap := cpu.Step(); trap != nil {
			if cpu.SystemMode {
				continue
			}
			fmt.Fprintf(os.Stderr, "unhandled trap: cause=%d tval=0x%x at pc=0x%x\n", trap.Cause, trap.Tval, cpu.Hart.PC)
			closeTracing()
			os.Exit(1)
		}
		cycles++
	}
	closeTracing()
	os.Exit(cpu.ExitCode)
}

func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	shutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nshutting down API server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		})
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	shutdown()
}

// setupTracing wires cfg.Execution's Enable* gates to vm.CPU's Tracer and
// MemTrace hooks, per cfg.Trace/cfg.Statistics. The returned func closes
// any opened trace files and flushes the statistics report; call it on
// every exit path, since os.Exit skips deferred calls.
func setupTracing(cpu *vm.CPU, cfg *config.Config) func() {
	var tracers vm.MultiTracer
	var closers []func()

	if cfg.Execution.EnableTrace {
		path := cfg.Trace.OutputFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(config.GetLogPath(), path)
		}
		f, err := os.Create(path) // #nosec G304 -- config-supplied trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot create trace file %s: %v\n", path, err)
		} else {
			et := vm.NewExecutionTrace(f)
			et.IncludeFlags = cfg.Trace.IncludeFlags
			et.IncludeTiming = cfg.Trace.IncludeTiming
			et.MaxEntries = cfg.Trace.MaxEntries
			et.BindHart(cpu.Hart)
			if cfg.Trace.FilterRegs != "" {
				et.SetFilterRegisters(strings.Split(cfg.Trace.FilterRegs, ","))
			}
			et.Start()
			tracers = append(tracers, et)
			closers = append(closers, func() { _ = f.Close() })
		}
	}

	if cfg.Execution.EnableMemTrace {
		path := filepath.Join(config.GetLogPath(), "memtrace.log")
		f, err := os.Create(path) // #nosec G304 -- fixed filename under the config log dir
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cannot create memory trace file %s: %v\n", path, err)
		} else {
			mt := vm.NewMemoryTrace(f)
			mt.MaxEntries = cfg.Trace.MaxEntries
			mt.Start()
			cpu.MemTrace = mt
			closers = append(closers, func() { _ = f.Close() })
		}
	}

	var stats *vm.PerformanceStatistics
	if cfg.Execution.EnableStats {
		stats = vm.NewPerformanceStatistics()
		stats.CollectHotPath = cfg.Statistics.CollectHotPath
		stats.TrackCalls = cfg.Statistics.TrackCalls
		stats.Start()
		tracers = append(tracers, stats)
	}

	if len(tracers) > 0 {
		cpu.Tracer = tracers
	}

	return func() {
		if stats != nil {
			path := cfg.Statistics.OutputFile
			if !filepath.IsAbs(path) {
				path = filepath.Join(config.GetLogPath(), path)
			}
			if f, err := os.Create(path); err == nil { // #nosec G304 -- config-supplied statistics output path
				var writeErr error
				if cfg.Statistics.Format == "csv" {
					writeErr = stats.WriteCSV(f)
				} else {
					writeErr = stats.WriteJSON(f)
				}
				if writeErr != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to write statistics report: %v\n", writeErr)
				}
				_ = f.Close()
			}
		}
		for _, c := range closers {
			c()
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func parseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func cacheSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printHelp() {
	fmt.Println(`rv32-emu - RV32IMAFC emulator

Usage:
  rv32-emu [flags] <program.bin>
  rv32-emu -api-server [-port N]
  rv32-emu -debug <program.bin>
  rv32-emu -tui <program.bin>

Flags:`)
	flag.PrintDefaults()
}
