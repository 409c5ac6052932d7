package filter

import (
	"errors"
	"fmt"
)

// ErrThreshold is matched by every ThresholdError via errors.Is.
var ErrThreshold = errors.New("invalid minimum-samples threshold")

// ThresholdError reports a minimum-samples value outside [0, Samples].
type ThresholdError struct {
	MinSamples int
	Samples    int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("minimum number of samples %d is outside the valid range 0..%d", e.MinSamples, e.Samples)
}

func (e *ThresholdError) Is(target error) bool { return target == ErrThreshold }
