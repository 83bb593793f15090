// Package config holds the engine configuration and the externalized
// subsystem-affinity table, with a YAML loader and a file watcher for hot
// reload of affinity weights.
package config

import (
	"fmt"
	"time"
)

// Config holds all tunable parameters of the diagnosis engine. Every field
// has a documented default; unspecified or invalid values fall back to it.
// The heuristic point weights inside the influence scorer are deliberate
// tuning constants, not calibrated against real data.
type Config struct {
	// MaxChainLength bounds the greedy chain walk, in nodes.
	MaxChainLength int

	// MaxNodeAge is the retention ceiling; nodes older than this are evicted
	// on every ingestion together with their edges.
	MaxNodeAge time.Duration

	// MinInfluenceScore is the minimum 0-100 influence required to create an
	// edge, manual or automatic.
	MinInfluenceScore float64

	// MinConfidence is the 0-1 threshold above which a result counts as
	// confident.
	MinConfidence float64

	// TimeLagWindow is the look-back window scanned for auto-connection
	// candidates when a node is ingested.
	TimeLagWindow time.Duration

	// CascadeDetection enables cascade reconstruction after a successful
	// root cause analysis.
	CascadeDetection bool

	// MaxLookbackCandidates caps how many recent in-window nodes are scored
	// against a newly ingested node.
	MaxLookbackCandidates int

	// HistoryLimit caps the cascade reconstruction history.
	HistoryLimit int

	// MaxTrackedSubsystems bounds the per-subsystem recent-observation cache
	// used for delta computation.
	MaxTrackedSubsystems int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxChainLength:        10,
		MaxNodeAge:            10 * time.Minute,
		MinInfluenceScore:     30,
		MinConfidence:         0.5,
		TimeLagWindow:         5 * time.Minute,
		CascadeDetection:      true,
		MaxLookbackCandidates: 5,
		HistoryLimit:          50,
		MaxTrackedSubsystems:  256,
	}
}

// Validate checks that the configuration is usable as-is.
func (c Config) Validate() error {
	if c.MaxChainLength < 2 {
		return NewConfigError("MaxChainLength must be at least 2")
	}
	if c.MaxNodeAge <= 0 {
		return NewConfigError("MaxNodeAge must be positive")
	}
	if c.MinInfluenceScore < 0 || c.MinInfluenceScore > 100 {
		return NewConfigError("MinInfluenceScore must be in [0,100]")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return NewConfigError("MinConfidence must be in [0,1]")
	}
	if c.TimeLagWindow <= 0 {
		return NewConfigError("TimeLagWindow must be positive")
	}
	if c.MaxLookbackCandidates < 1 {
		return NewConfigError("MaxLookbackCandidates must be at least 1")
	}
	if c.HistoryLimit < 1 {
		return NewConfigError("HistoryLimit must be at least 1")
	}
	if c.MaxTrackedSubsystems < 1 {
		return NewConfigError("MaxTrackedSubsystems must be at least 1")
	}
	return nil
}

// Normalized returns a copy with every invalid field replaced by its
// default. The engine never refuses to start over configuration: anomalies
// degrade to defaults.
func (c Config) Normalized() Config {
	def := DefaultConfig()
	if c.MaxChainLength < 2 {
		c.MaxChainLength = def.MaxChainLength
	}
	if c.MaxNodeAge <= 0 {
		c.MaxNodeAge = def.MaxNodeAge
	}
	if c.MinInfluenceScore < 0 || c.MinInfluenceScore > 100 {
		c.MinInfluenceScore = def.MinInfluenceScore
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		c.MinConfidence = def.MinConfidence
	}
	if c.TimeLagWindow <= 0 {
		c.TimeLagWindow = def.TimeLagWindow
	}
	if c.MaxLookbackCandidates < 1 {
		c.MaxLookbackCandidates = def.MaxLookbackCandidates
	}
	if c.HistoryLimit < 1 {
		c.HistoryLimit = def.HistoryLimit
	}
	if c.MaxTrackedSubsystems < 1 {
		c.MaxTrackedSubsystems = def.MaxTrackedSubsystems
	}
	return c
}

// ConfigError represents a configuration error.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.message)
}
