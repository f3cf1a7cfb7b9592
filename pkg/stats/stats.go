// Package stats periodically logs process-level runtime statistics, useful
// when chasing leaks on a long-running deployment.
package stats

import (
	"context"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

const megabyte = 1 << 20

// EnableRuntimeStatistics starts a goroutine that logs memory usage and the
// goroutine count at every interval until the context is done.
func EnableRuntimeStatistics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				LogRuntimeStatistics()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// LogRuntimeStatistics logs the current memory usage and goroutine count.
func LogRuntimeStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.WithFields(log.Fields{
		"heap_alloc_mb":  toMegabytes(memStats.HeapAlloc),
		"total_alloc_mb": toMegabytes(memStats.TotalAlloc),
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}).Info("runtime statistics")
}

func toMegabytes(bytes uint64) float64 {
	return float64(bytes) / megabyte
}
