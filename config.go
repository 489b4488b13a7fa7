package jobscope

import "fmt"

// DefaultCheckpointInterval is the cursor spacing between stored state
// snapshots. Rewinds replay at most this many events.
const DefaultCheckpointInterval = 30

// Config controls how replay engines are built for registered applications.
type Config struct {
	// CheckpointInterval is the spacing of stored snapshots. 1 stores every
	// state (fast rewind, high memory); a value at or above the log length
	// degenerates to full replay from the start.
	CheckpointInterval int
}

// DefaultConfig returns a config tuned for interactive scrolling.
func DefaultConfig() Config {
	return Config{CheckpointInterval: DefaultCheckpointInterval}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.CheckpointInterval < 1 {
		return fmt.Errorf("checkpoint interval must be >= 1, got %d", c.CheckpointInterval)
	}
	return nil
}
