package compare

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyGroup      = errors.New("empty comparison group")
	ErrUnsupportedTest = errors.New("unsupported statistical test")
)

// EmptyGroupError names the group (1 or 2) that had no observations.
type EmptyGroupError struct {
	Group int
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("group %d has no observations", e.Group)
}

func (e *EmptyGroupError) Is(target error) bool { return target == ErrEmptyGroup }

// UnsupportedTestError carries the test kind that was asked for.
type UnsupportedTestError struct {
	Kind TestKind
}

func (e *UnsupportedTestError) Error() string {
	return fmt.Sprintf("unsupported test %q: use %q or %q", string(e.Kind), string(TTest), string(MannWhitney))
}

func (e *UnsupportedTestError) Is(target error) bool { return target == ErrUnsupportedTest }
