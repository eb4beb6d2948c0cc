package errortypes

import "fmt"

// ErrFilePos is an error that knows where in source it occurred. Every
// structural error in this package (see structural.go) embeds pos and
// satisfies this for free; ToErrFilePos lets internal/cli surface the
// position without a type switch over every concrete error kind.
type ErrFilePos interface {
	error
	File() string
	Line() int
	Col() int
}

// NewErrFilePosf builds a one-off ErrFilePos, for callers that don't
// warrant a dedicated named error type.
func NewErrFilePosf(file string, line, col int, format string, args ...interface{}) error {
	return &errFilePos{
		error: fmt.Errorf(format, args...),
		file:  file,
		line:  line,
		col:   col,
	}
}

// IsErrFilePos reports whether the root cause of err is an ErrFilePos.
// Wrapped errors are unwrapped via Cause().
func IsErrFilePos(err error) bool {
	if err == nil {
		return false
	}
	err = rootCause(err)

	_, isErrFilePos := err.(ErrFilePos)
	return isErrFilePos
}

// ToErrFilePos converts the input error to an ErrFilePos if possible, or nil if not.
// If IsErrFilePos returns true, this will not return nil.
func ToErrFilePos(err error) ErrFilePos {
	if err == nil {
		return nil
	}
	err = rootCause(err)
	if out, isErrFilePos := err.(ErrFilePos); isErrFilePos {
		return out
	}
	return nil
}

func rootCause(err error) error {
	type causer interface {
		Cause() error
	}

	for {
		if e, ok := err.(causer); ok {
			err = e.Cause()
		} else {
			return err
		}
	}
}

var _ ErrFilePos = &errFilePos{}

type errFilePos struct {
	error
	file string
	line int
	col  int
}

func (e *errFilePos) File() string {
	return e.file
}

func (e *errFilePos) Line() int {
	return e.line
}

func (e *errFilePos) Col() int {
	return e.col
}
