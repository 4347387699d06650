package engine

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrInvalidConfig indicates invalid engine configuration values.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config holds the search settings.
type Config struct {
	Depth    int  // Search depth in plies (0 = static evaluation only)
	Parallel bool // Search root moves concurrently on cloned states
	Workers  int  // Maximum concurrent root searches when Parallel is set
}

// DefaultConfig returns the synchronous three-ply configuration.
func DefaultConfig() Config {
	return Config{
		Depth:   DefaultDepth,
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.Depth < 0 || c.Depth > MaxDepth {
		return fmt.Errorf("%w: depth %d outside [0, %d]", ErrInvalidConfig, c.Depth, MaxDepth)
	}
	if c.Parallel && c.Workers < 1 {
		return fmt.Errorf("%w: parallel search needs at least one worker, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}
