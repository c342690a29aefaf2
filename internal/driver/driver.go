package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/resume"
)

// State of the batch loop.
type State int

const (
	StateIdle State = iota
	StateScanning
	StatePresenting
	StateRecording
	StateDone
	StateCancelled
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StatePresenting:
		return "presenting"
	case StateRecording:
		return "recording"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Outcome is what one interaction session produced. Exactly one of the
// record pointers is set on completion; Cancelled set means the human
// aborted the whole batch.
type Outcome struct {
	Description *dataset.DescriptionRecord
	Guess       *dataset.GuessRecord
	Selection   *dataset.SelectionRecord
	Cancelled   bool
}

// Interactor presents one sample synchronously and returns its outcome.
// It is the boundary to whatever collects the human's answer; it must
// not write result files itself.
type Interactor interface {
	Present(ctx context.Context, s dataset.Sample, position, total int) (Outcome, error)
}

// Recorder persists one completed sample. Implemented by the result
// writer.
type Recorder interface {
	Record(s dataset.Sample, o Outcome) error
}

// Driver walks the sample sequence, presenting one interaction session
// per remaining sample and persisting a result file after each before
// advancing. Human-paced and strictly sequential.
type Driver struct {
	samples    []dataset.Sample
	outputDir  string
	conv       resume.Convention
	interactor Interactor
	recorder   Recorder
	logger     *slog.Logger

	state     State
	index     int
	processed int
}

// New returns an idle driver over the given sample sequence.
func New(samples []dataset.Sample, outputDir string, conv resume.Convention, interactor Interactor, recorder Recorder, logger *slog.Logger) *Driver {
	return &Driver{
		samples:    samples,
		outputDir:  outputDir,
		conv:       conv,
		interactor: interactor,
		recorder:   recorder,
		logger:     logger,
		state:      StateIdle,
	}
}

// State returns the driver's current state.
func (d *Driver) State() State { return d.state }

// Processed returns how many samples were completed during this run.
func (d *Driver) Processed() int { return d.processed }

// Run executes the batch until done, cancelled or a fatal error. Errors
// during a sample are fatal for the whole batch; skipping would leave
// silent gaps in the dataset.
func (d *Driver) Run(ctx context.Context) error {
	if len(d.samples) == 0 {
		d.logger.Warn("no samples to process")
		d.state = StateDone
		return nil
	}

	d.state = StateScanning
	d.index = resume.StartIndex(d.samples, d.outputDir, d.conv)
	if d.index >= len(d.samples) {
		d.logger.Info("all samples already annotated, nothing to do")
		d.state = StateDone
		return nil
	}
	d.logger.Info("resuming batch",
		"start", d.index+1,
		"total", len(d.samples))

	for d.index < len(d.samples) {
		s := d.samples[d.index]
		d.state = StatePresenting
		d.logger.Info("presenting sample",
			"position", d.index+1,
			"total", len(d.samples),
			"id", s.MaskID())

		outcome, err := d.interactor.Present(ctx, s, d.index+1, len(d.samples))
		if err != nil {
			d.state = StateError
			return fmt.Errorf("failed on sample %d/%d (%s): %v", d.index+1, len(d.samples), s.MaskID(), err)
		}
		if outcome.Cancelled {
			d.logger.Info("batch cancelled", "completed", d.processed)
			d.state = StateCancelled
			return nil
		}

		d.state = StateRecording
		if err := d.recorder.Record(s, outcome); err != nil {
			d.state = StateError
			return fmt.Errorf("failed to record result for '%s': %v", s.MaskID(), err)
		}
		d.processed++
		d.index++
	}

	d.logger.Info("batch complete", "completed", d.processed)
	d.state = StateDone
	return nil
}
