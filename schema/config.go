package schema

import (
	"errors"
	"time"
)

// DefaultDebounceInterval is the quiescence window for coalescing refreshes.
const DefaultDebounceInterval = 180 * time.Millisecond

// EngineConfig defines timing and limits for the reactive engine.
type EngineConfig struct {
	// DebounceInterval is the trailing-edge quiescence window; a refresh runs
	// once no new request has arrived for this long.
	DebounceInterval time.Duration
}

// NormalizeEngineConfig applies defaults and validates the config.
func NormalizeEngineConfig(cfg EngineConfig) (EngineConfig, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.DebounceInterval < 0 {
		return EngineConfig{}, errors.New("debounce interval must not be negative")
	}
	return cfg, nil
}
