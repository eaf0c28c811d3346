package viewport

import (
	"errors"
	"fmt"
)

// Controller errors.
var (
	ErrContainerMissing = errors.New("viewport container missing")
	ErrIndexOutOfRange  = errors.New("viewport index out of range")
	ErrNoLoader         = errors.New("viewport loader factory not set")
	ErrClosed           = errors.New("viewport controller closed")
	ErrLoaderPanic      = errors.New("model loader panicked")
)

// LoadError reports a model that failed to load into a viewport. The
// viewport is left empty.
type LoadError struct {
	Index    int
	Filename string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Failed to load model: %s in viewport %d: %v", e.Filename, e.Index+1, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
