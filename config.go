// Package pim configuration constants
package pim

import (
	"io"
	"log/slog"
)

// Memory pool parameters
const (
	// Memory alignment for pooled allocations (cache line size)
	MemoryAlignment = 64

	// Default upper bound on live pooled memory
	DefaultMemoryLimit = 16 * 1024 * 1024 * 1024 // 16GB

	// Free list size above which released blocks are dropped instead of kept
	FreeListThreshold = 100
)

// Device parameters
const (
	// Number of emulated devices reported by GetDeviceCount
	MaxDevices = 1

	// Name of the emulated device
	DeviceName = "PIM (host emulation)"
)

// StagePolicy selects how multi-stage kernels (GemvAdd, GemvAddBias)
// react to a failing stage.
type StagePolicy int

const (
	// FailFast stops at the first failing stage and returns its error.
	FailFast StagePolicy = iota
	// Accumulate runs every remaining stage that has valid inputs and
	// returns all stage errors joined. Output may be partially updated.
	Accumulate
)

// String returns the policy name
func (p StagePolicy) String() string {
	switch p {
	case FailFast:
		return "FailFast"
	case Accumulate:
		return "Accumulate"
	default:
		return "Unknown"
	}
}

// Config holds runtime configuration
type Config struct {
	// Allocator backs every buffer and raw allocation. Nil selects a
	// MemoryPool limited to MemoryLimit bytes.
	Allocator Allocator

	// MemoryLimit caps live memory of the default pool. Zero means
	// DefaultMemoryLimit.
	MemoryLimit int64

	// StagePolicy controls multi-stage kernels
	StagePolicy StagePolicy

	// Logger receives debug records. Nil discards.
	Logger *slog.Logger
}

// DefaultConfig returns default runtime configuration
func DefaultConfig() Config {
	return Config{
		MemoryLimit: DefaultMemoryLimit,
		StagePolicy: FailFast,
	}
}

// withDefaults fills zero-valued fields
func (c Config) withDefaults() Config {
	if c.MemoryLimit <= 0 {
		c.MemoryLimit = DefaultMemoryLimit
	}
	if c.Allocator == nil {
		c.Allocator = NewMemoryPool(c.MemoryLimit)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}
