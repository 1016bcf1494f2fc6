package fetch

import (
	"fmt"
	"time"
)

// Constraints bounds a single fetch. It is built once at startup and shared
// read-only by every request.
type Constraints struct {
	// MaxBytes is the largest body accepted, in bytes.
	MaxBytes int64

	// Timeout bounds the whole fetch, connect and transfer included.
	Timeout time.Duration
}

// Validate checks that both limits are positive.
func (c Constraints) Validate() error {
	if c.MaxBytes <= 0 {
		return fmt.Errorf("%w: max bytes must be positive, got %d", ErrInvalidConstraints, c.MaxBytes)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConstraints, c.Timeout)
	}
	return nil
}
