package infrastructure

import (
	"runtime"
	"time"
)

// RuntimeStats is the process snapshot reported by the health endpoint
type RuntimeStats struct {
	Goroutines  int     `json:"goroutines"`
	HeapAlloc   uint64  `json:"heap_alloc_bytes"`
	HeapSys     uint64  `json:"heap_sys_bytes"`
	GCCount     uint32  `json:"gc_count"`
	LastGCPause string  `json:"last_gc_pause"`
	CPUCount    int     `json:"cpu_count"`
	UptimeSecs  float64 `json:"uptime_seconds"`
}

// CollectRuntimeStats reads the Go runtime counters. startTime is the
// process start used for uptime.
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var lastPause time.Duration
	if memStats.NumGC > 0 {
		lastPause = time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256])
	}

	return RuntimeStats{
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   memStats.HeapAlloc,
		HeapSys:     memStats.HeapSys,
		GCCount:     memStats.NumGC,
		LastGCPause: lastPause.String(),
		CPUCount:    runtime.NumCPU(),
		UptimeSecs:  time.Since(startTime).Seconds(),
	}
}
