package tracehist

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedChannel is returned by resolvers for channels they do not map.
	ErrUnresolvedChannel = errors.New("unresolved channel")
	// ErrInvalidPlane marks a channel resolving to a plane outside {0,1,2}.
	ErrInvalidPlane = errors.New("invalid plane resolution")
)

// ConfigError represents an invalid or incomplete configuration. It is
// raised before any frame is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %q: %s", e.Field, e.Reason)
}

// ResolutionError represents a channel that could not be assigned to one of
// the three planes. It aborts the frame being processed.
type ResolutionError struct {
	Channel int
	Plane   int
	Err     error
}

func (e *ResolutionError) Error() string {
	if errors.Is(e.Err, ErrInvalidPlane) {
		return fmt.Sprintf("channel %d: %v %d", e.Channel, e.Err, e.Plane)
	}
	return fmt.Sprintf("channel %d: %v", e.Channel, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ErrWriteGrid represents a failure of an output sink while finalizing a grid.
type ErrWriteGrid struct {
	Frame int
	Name  string
	Err   error
}

func (e *ErrWriteGrid) Error() string {
	return fmt.Sprintf("error writing grid %q of frame %d: %v", e.Name, e.Frame, e.Err)
}

func (e *ErrWriteGrid) Unwrap() error {
	return e.Err
}
