package pack

import "fmt"

// MissingInputError is returned when a required input is absent at
// startup. Nothing has been written when it is returned.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required input not found: %s", e.Path)
}

// WriteTargetError is returned when the output container cannot be
// prepared.
type WriteTargetError struct {
	Path string
	Err  error
}

func (e *WriteTargetError) Error() string {
	return fmt.Sprintf("prepare output %s: %v", e.Path, e.Err)
}

func (e *WriteTargetError) Unwrap() error {
	return e.Err
}
