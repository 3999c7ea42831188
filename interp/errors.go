package interp

import (
	"errors"
	"fmt"

	"github.com/timewinder-dev/linebasic/device"
)

// ErrStop ends a run without an error: STOP, END, or exhausted input.
var ErrStop = errors.New("Program stopped")

// ErrNotImplemented marks dialect features the engine does not support.
var ErrNotImplemented = errors.New("Not implemented")

var (
	ErrOutOfData          = errors.New("Out of data")
	ErrNextMismatch       = errors.New("NEXT variable does not match FOR")
	ErrUnmatchedFor       = errors.New("FOR without matching NEXT")
	ErrNextWithoutFor     = errors.New("NEXT without FOR")
	ErrReturnWithoutGosub = errors.New("RETURN without GOSUB")
	ErrUndefinedLine      = errors.New("Undefined line number")
	ErrUndefinedVariable  = errors.New("Undefined variable")
	ErrUndeclaredArray    = errors.New("Array not dimensioned")
	ErrSubscript          = errors.New("Subscript out of range")
	ErrTypeMismatch       = errors.New("Data type error")
	ErrDivisionByZero     = errors.New("Division by 0")
	ErrInfiniteLoop       = errors.New("Infinite loop detected")
	ErrOutOfMemory        = errors.New("Out of memory")
	ErrInterrupted        = device.ErrInterrupted
)

// LineError attaches the BASIC line number to a runtime failure.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// atLine wraps err with line unless it already carries one.
func atLine(line int, err error) error {
	var le *LineError
	if errors.As(err, &le) {
		return err
	}
	return &LineError{Line: line, Err: err}
}
