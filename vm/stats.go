package vm

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"time"
)

// PerformanceStatistics is a Tracer that tallies block-cache hits/misses,
// trap counts, and per-PC hot-path frequency for a run, for dumping to a
// report file once execution stops.
type PerformanceStatistics struct {
	CollectHotPath bool
	TrackCalls     bool

	BlockHits   uint64
	BlockMisses uint64
	HotBlocks   uint64
	Traps       uint64

	HotPath map[uint32]uint64 // PC -> hit count, only populated when CollectHotPath

	startTime     time.Time
	executionTime time.Duration
}

// NewPerformanceStatistics builds a tracker with both optional counters
// enabled.
func NewPerformanceStatistics() *PerformanceStatistics {
	return &PerformanceStatistics{
		CollectHotPath: true,
		TrackCalls:     true,
		HotPath:        make(map[uint32]uint64),
	}
}

// Start resets every counter and the elapsed-time clock.
func (s *PerformanceStatistics) Start() {
	s.startTime = time.Now()
	s.BlockHits, s.BlockMisses, s.HotBlocks, s.Traps = 0, 0, 0, 0
	s.HotPath = make(map[uint32]uint64)
}

// Trace implements Tracer.
func (s *PerformanceStatistics) Trace(ev TraceEvent) {
	switch ev.Kind {
	case "block_hit":
		s.BlockHits++
		if s.CollectHotPath {
			s.HotPath[ev.PC]++
		}
	case "block_miss":
		s.BlockMisses++
	case "hot_block":
		s.HotBlocks++
	case "trap":
		if s.TrackCalls {
			s.Traps++
		}
	}
}

// Finalize stamps the elapsed execution time since Start.
func (s *PerformanceStatistics) Finalize() {
	s.executionTime = time.Since(s.startTime)
}

// HotPathEntry is one row of the sorted hot-path report.
type HotPathEntry struct {
	PC    uint32
	Count uint64
}

// TopHotPath returns the n most frequently hit block-entry PCs, most
// frequent first. n <= 0 returns every entry.
func (s *PerformanceStatistics) TopHotPath(n int) []HotPathEntry {
	entries := make([]HotPathEntry, 0, len(s.HotPath))
	for pc, count := range s.HotPath {
		entries = append(entries, HotPathEntry{PC: pc, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	if n > 0 && n < len(entries) {
		return entries[:n]
	}
	return entries
}

// WriteJSON renders the report as JSON, matching Statistics.Format="json".
func (s *PerformanceStatistics) WriteJSON(w io.Writer) error {
	s.Finalize()
	data := map[string]any{
		"block_hits":        s.BlockHits,
		"block_misses":      s.BlockMisses,
		"hot_blocks":        s.HotBlocks,
		"traps":             s.Traps,
		"execution_time_ms": s.executionTime.Milliseconds(),
		"top_hot_path":      s.TopHotPath(20),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteCSV renders the report as CSV, matching Statistics.Format="csv".
func (s *PerformanceStatistics) WriteCSV(w io.Writer) error {
	s.Finalize()
	cw := csv.NewWriter(w)
	defer cw.Flush()

	rows := [][]string{
		{"metric", "value"},
		{"block_hits", strconv.FormatUint(s.BlockHits, 10)},
		{"block_misses", strconv.FormatUint(s.BlockMisses, 10)},
		{"hot_blocks", strconv.FormatUint(s.HotBlocks, 10)},
		{"traps", strconv.FormatUint(s.Traps, 10)},
		{"execution_time_ms", strconv.FormatInt(s.executionTime.Milliseconds(), 10)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
