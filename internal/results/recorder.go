package results

import (
	"fmt"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/driver"
)

// Recorder adapts a Writer to the batch driver's persistence contract.
type Recorder struct {
	writer *Writer
}

// NewRecorder wraps a writer for use by the batch driver.
func NewRecorder(w *Writer) *Recorder {
	return &Recorder{writer: w}
}

// Record persists whichever record the interaction produced.
func (r *Recorder) Record(s dataset.Sample, o driver.Outcome) error {
	switch {
	case o.Description != nil:
		return r.writer.WriteDescription(s, *o.Description)
	case o.Guess != nil:
		return r.writer.WriteGuess(s, *o.Guess)
	case o.Selection != nil:
		return r.writer.WriteSelection(s, *o.Selection)
	}
	return fmt.Errorf("interaction for '%s' produced no record", s.MaskID())
}
