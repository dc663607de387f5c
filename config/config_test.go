package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Emulator defaults
	if !cfg.Emulator.ExtM || !cfg.Emulator.ExtA || !cfg.Emulator.ExtF || !cfg.Emulator.ExtC {
		t.Error("Expected every base extension enabled by default")
	}
	if !cfg.Emulator.ARC {
		t.Error("Expected ARC=true by default")
	}
	if cfg.Emulator.JITThreshold != 1000 {
		t.Errorf("Expected JITThreshold=1000, got %d", cfg.Emulator.JITThreshold)
	}
	if cfg.Emulator.MemSize != 128*1024*1024 {
		t.Errorf("Expected MemSize=128MiB, got %d", cfg.Emulator.MemSize)
	}
	if cfg.Emulator.ElfLoader {
		t.Error("Expected ElfLoader=false by default")
	}

	// Execution defaults
	if cfg.Execution.MaxCycles != 1000000 {
		t.Errorf("Expected MaxCycles=1000000, got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.DefaultEntry != "0x8000" {
		t.Errorf("Expected DefaultEntry=0x8000, got %s", cfg.Execution.DefaultEntry)
	}

	// Debugger defaults
	if cfg.Debugger.HistorySize != 1000 {
		t.Errorf("Expected HistorySize=1000, got %d", cfg.Debugger.HistorySize)
	}
	if !cfg.Debugger.ShowRegisters {
		t.Error("Expected ShowRegisters=true")
	}

	// Display defaults
	if cfg.Display.BytesPerLine != 16 {
		t.Errorf("Expected BytesPerLine=16, got %d", cfg.Display.BytesPerLine)
	}

	// Trace/statistics defaults
	if cfg.Trace.MaxEntries != 100000 {
		t.Errorf("Expected MaxEntries=100000, got %d", cfg.Trace.MaxEntries)
	}
	if cfg.Statistics.Format != "json" {
		t.Errorf("Expected Format=json, got %s", cfg.Statistics.Format)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("Expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "rv32-emu" && path != "config.toml" {
			t.Errorf("Expected path in rv32-emu directory or fallback, got %s", path)
		}
	}
}

func TestGetLogPath(t *testing.T) {
	path := GetLogPath()
	if path == "" {
		t.Error("GetLogPath returned empty string")
	}
	if filepath.Base(path) != "logs" {
		t.Errorf("Expected path to end with logs, got %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Emulator.ExtC = false
	cfg.Emulator.ARC = false
	cfg.Emulator.JITThreshold = 2500
	cfg.Execution.MaxCycles = 5000000
	cfg.Debugger.HistorySize = 500

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Emulator.ExtC {
		t.Error("Expected ExtC=false after round trip")
	}
	if loaded.Emulator.ARC {
		t.Error("Expected ARC=false after round trip")
	}
	if loaded.Emulator.JITThreshold != 2500 {
		t.Errorf("Expected JITThreshold=2500, got %d", loaded.Emulator.JITThreshold)
	}
	if loaded.Execution.MaxCycles != 5000000 {
		t.Errorf("Expected MaxCycles=5000000, got %d", loaded.Execution.MaxCycles)
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom on a missing file should fall back to defaults, got error: %v", err)
	}
	if !cfg.Emulator.ExtM {
		t.Error("expected default config (ExtM=true) when the file is absent")
	}
}

func TestExtensionsBridging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Emulator.ExtC = false
	cfg.Emulator.Zbs = false

	ext := cfg.Extensions()
	if ext.C {
		t.Error("Extensions().C should mirror Emulator.ExtC=false")
	}
	if ext.Zbs {
		t.Error("Extensions().Zbs should mirror Emulator.Zbs=false")
	}
	if !ext.M || !ext.A || !ext.F {
		t.Error("Extensions() dropped an enabled gate")
	}
}

func TestCPUConfigBridging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Emulator.ARC = false
	cfg.Emulator.CacheCapacity = 512
	cfg.Emulator.JITThreshold = 777
	cfg.Emulator.BlockChaining = false

	cc := cfg.CPUConfig(true)
	if !cc.SystemMode {
		t.Error("CPUConfig(true).SystemMode should be true")
	}
	if cc.ARC {
		t.Error("CPUConfig().ARC should mirror Emulator.ARC=false")
	}
	if cc.CacheCapacity != 512 {
		t.Errorf("CacheCapacity = %d, want 512", cc.CacheCapacity)
	}
	if cc.JITThreshold != 777 {
		t.Errorf("JITThreshold = %d, want 777", cc.JITThreshold)
	}
	if cc.ChainingEnabled {
		t.Error("ChainingEnabled should mirror Emulator.BlockChaining=false")
	}
}
