package netdiff

import (
	"errors"
	"fmt"
)

// ErrInputFormat is matched by every InputFormatError via errors.Is.
var ErrInputFormat = errors.New("input format error")

// InputFormatError describes a malformed row or column in a delimited input
// file. Line is 1-based; 0 means the problem is not tied to a single line.
type InputFormatError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *InputFormatError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}

	switch {
	case e.Path == "":
		return msg
	case e.Line > 0:
		return fmt.Sprintf("%s line %d: %s", e.Path, e.Line, msg)
	}

	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *InputFormatError) Unwrap() error { return e.Err }

func (e *InputFormatError) Is(target error) bool { return target == ErrInputFormat }
