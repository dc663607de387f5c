package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/lookbusy1344/rv32-emu/vm"
)

// Config represents the emulator configuration
type Config struct {
	// Emulator holds the enumerated option record: extension gates, the
	// cache/chaining/JIT-threshold knobs, and the
	// build-mode switch between a user-mode (ELF) and system-mode hart.
	Emulator struct {
		ExtM       bool `toml:"ext_m"`
		ExtA       bool `toml:"ext_a"`
		ExtF       bool `toml:"ext_f"`
		ExtC       bool `toml:"ext_c"`
		Zba        bool `toml:"zba"`
		Zbb        bool `toml:"zbb"`
		Zbc        bool `toml:"zbc"`
		Zbs        bool `toml:"zbs"`
		Zicsr      bool `toml:"zicsr"`
		Zifencei   bool `toml:"zifencei"`

		BlockChaining bool `toml:"block_chaining"`
		MopFusion     bool `toml:"mop_fusion"`
		ARC           bool `toml:"arc"`
		JITThreshold  uint64 `toml:"jit_threshold"`
		CacheCapacity int    `toml:"cache_capacity"`

		MemSize   uint64 `toml:"mem_size"`
		ElfLoader bool   `toml:"elf_loader"`
	} `toml:"emulator"`

	// Execution settings
	Execution struct {
		MaxCycles      uint64 `toml:"max_cycles"`
		StackSize      uint   `toml:"stack_size"`
		DefaultEntry   string `toml:"default_entry"`
		EnableTrace    bool   `toml:"enable_trace"`
		EnableMemTrace bool   `toml:"enable_mem_trace"`
		EnableStats    bool   `toml:"enable_stats"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		HistorySize    int  `toml:"history_size"`
		AutoSaveBreaks bool `toml:"auto_save_breakpoints"`
		ShowRegisters  bool `toml:"show_registers"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		BytesPerLine  int    `toml:"bytes_per_line"`
		DisasmContext int    `toml:"disasm_context"`
		NumberFormat  string `toml:"number_format"` // hex, dec, both
	} `toml:"display"`

	// Trace settings
	Trace struct {
		OutputFile    string `toml:"output_file"`
		FilterRegs    string `toml:"filter_registers"` // comma-separated: "x1,x2,x10"
		IncludeFlags  bool   `toml:"include_flags"`
		IncludeTiming bool   `toml:"include_timing"`
		MaxEntries    int    `toml:"max_entries"`
	} `toml:"trace"`

	// Statistics settings
	Statistics struct {
		OutputFile     string `toml:"output_file"`
		Format         string `toml:"format"` // json or csv; any other value writes json
		CollectHotPath bool   `toml:"collect_hotpath"`
		TrackCalls     bool   `toml:"track_calls"`
	} `toml:"statistics"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Emulator defaults: every extension enabled, ARC replacement,
	// chaining on, default JIT threshold.
	cfg.Emulator.ExtM = true
	cfg.Emulator.ExtA = true
	cfg.Emulator.ExtF = true
	cfg.Emulator.ExtC = true
	cfg.Emulator.Zba = true
	cfg.Emulator.Zbb = true
	cfg.Emulator.Zbc = true
	cfg.Emulator.Zbs = true
	cfg.Emulator.Zicsr = true
	cfg.Emulator.Zifencei = true
	cfg.Emulator.BlockChaining = true
	cfg.Emulator.MopFusion = false
	cfg.Emulator.ARC = true
	cfg.Emulator.JITThreshold = 1000
	cfg.Emulator.CacheCapacity = 1024
	cfg.Emulator.MemSize = 128 * 1024 * 1024
	cfg.Emulator.ElfLoader = false

	// Execution defaults
	cfg.Execution.MaxCycles = 1000000
	cfg.Execution.StackSize = 65536 // 64KB
	cfg.Execution.DefaultEntry = "0x8000"
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableMemTrace = false
	cfg.Execution.EnableStats = false

	// Debugger defaults
	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.AutoSaveBreaks = true
	cfg.Debugger.ShowRegisters = true

	// Display defaults
	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.DisasmContext = 5
	cfg.Display.NumberFormat = "hex"

	// Trace defaults
	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.FilterRegs = ""
	cfg.Trace.IncludeFlags = true
	cfg.Trace.IncludeTiming = true
	cfg.Trace.MaxEntries = 100000

	// Statistics defaults
	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"
	cfg.Statistics.CollectHotPath = true
	cfg.Statistics.TrackCalls = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\rv32-emu\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rv32-emu")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/rv32-emu/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rv32-emu")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\rv32-emu\logs
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "rv32-emu", "logs")

	case "darwin", "linux":
		// macOS/Linux: ~/.local/share/rv32-emu/logs
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "rv32-emu", "logs")

	default:
		return "logs"
	}

	// Ensure directory exists
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	// Encode to TOML
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Extensions translates the Emulator.Ext* gates into a vm.Extensions
// value for vm.Decode/vm.BuildBlock.
func (c *Config) Extensions() vm.Extensions {
	return vm.Extensions{
		M: c.Emulator.ExtM, A: c.Emulator.ExtA, F: c.Emulator.ExtF, C: c.Emulator.ExtC,
		Zba: c.Emulator.Zba, Zbb: c.Emulator.Zbb, Zbc: c.Emulator.Zbc, Zbs: c.Emulator.Zbs,
		Zicsr: c.Emulator.Zicsr, Zifencei: c.Emulator.Zifencei,
	}
}

// CPUConfig translates this configuration into a vm.CPUConfig ready to
// hand to vm.NewCPU.
func (c *Config) CPUConfig(systemMode bool) vm.CPUConfig {
	return vm.CPUConfig{
		Ext:             c.Extensions(),
		SystemMode:      systemMode,
		ARC:             c.Emulator.ARC,
		CacheCapacity:   c.Emulator.CacheCapacity,
		JITThreshold:    c.Emulator.JITThreshold,
		ChainingEnabled: c.Emulator.BlockChaining,
	}
}
