package zplrender

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrMalformedBox     = errors.New("malformed box")
	ErrUnexpected       = errors.New("unexpected failure")
)

// CommandError reports the command that aborted a pass.
type CommandError struct {
	Index   int    // position of the command in document order
	Command string // raw command text
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d %q: %v", e.Index, e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
