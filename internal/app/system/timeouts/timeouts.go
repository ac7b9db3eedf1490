// Package timeouts centralizes the context deadlines handlers attach to
// store and allocation work.
//
// Tiers map to cost: Ping for connectivity probes, Short for single-document
// reads, Medium for list queries and simple writes, Long for the allocation
// transaction with its retry budget, Batch for bulk code assignment.
package timeouts

import (
	"os"
	"sync"
	"time"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 2 * time.Minute
)

var (
	mu     sync.RWMutex
	values = map[string]time.Duration{
		"PING":   DefaultPing,
		"SHORT":  DefaultShort,
		"MEDIUM": DefaultMedium,
		"LONG":   DefaultLong,
		"BATCH":  DefaultBatch,
	}
)

func get(tier string) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return values[tier]
}

// Ping is the deadline for health checks and connectivity probes.
func Ping() time.Duration { return get("PING") }

// Short is the deadline for single-document reads.
func Short() time.Duration { return get("SHORT") }

// Medium is the deadline for list queries and simple writes.
func Medium() time.Duration { return get("MEDIUM") }

// Long is the deadline for the allocation transaction including retries.
func Long() time.Duration { return get("LONG") }

// Batch is the deadline for bulk employee-code assignment.
func Batch() time.Duration { return get("BATCH") }

// ConfigureFromEnv overrides tiers from STUDIOOPS_TIMEOUT_<TIER> variables
// (Go duration syntax, e.g. "45s"). Unset or unparseable values keep the
// current setting. Returns how many tiers were overridden; called once at
// startup before handlers are built.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	overridden := 0
	for tier := range values {
		v := os.Getenv("STUDIOOPS_TIMEOUT_" + tier)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			continue
		}
		values[tier] = d
		overridden++
	}
	return overridden
}

// Reset restores the defaults. For tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	values = map[string]time.Duration{
		"PING":   DefaultPing,
		"SHORT":  DefaultShort,
		"MEDIUM": DefaultMedium,
		"LONG":   DefaultLong,
		"BATCH":  DefaultBatch,
	}
}
