package report

import (
	"fmt"
	"io"
)

// Writer emits a rendered summary to every one of its sinks. All sinks receive
// the same bytes.
type Writer struct {
	sinks []io.Writer
}

func NewWriter(sinks ...io.Writer) *Writer {
	return &Writer{sinks: sinks}
}

// Emit renders s once and writes the result to each sink in order. It stops at
// the first sink that fails.
func (w *Writer) Emit(s Statistics) error {
	text := s.Render()

	for i, sink := range w.sinks {
		n, err := sink.Write(text)
		if err != nil {
			return fmt.Errorf("Emit: sink %d: %w", i, err)
		}
		if n != len(text) {
			return fmt.Errorf("Emit: sink %d: %w", i, io.ErrShortWrite)
		}
	}

	return nil
}
