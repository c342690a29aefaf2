package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/resume"
	"github.com/bdougie/pixelpoint/internal/score"
)

// GuessResult is the per-sample evaluation document: the original sample
// plus the produced guess.
type GuessResult struct {
	SampleData     dataset.Sample      `json:"sample_data"`
	EvaluationData dataset.GuessRecord `json:"evaluation_data"`
}

// SelectionResult is the per-sample fixed-choice document: the original
// sample plus the chosen option.
type SelectionResult struct {
	SampleData     dataset.Sample          `json:"sample_data"`
	EvaluationData dataset.SelectionRecord `json:"evaluation_data"`
}

// SessionGuess is one entry of a single-session aggregate document.
type SessionGuess struct {
	Description     string        `json:"description"`
	TruePosition    dataset.Point `json:"true_position"`
	GuessedPosition dataset.Point `json:"guessed_position"`
	Distance        float64       `json:"distance"`
}

// SessionResult is the aggregate document written once per pixel
// evaluation session.
type SessionResult struct {
	ImagePath       string         `json:"image_path"`
	JSONPath        string         `json:"json_path"`
	ImageDimensions [2]int         `json:"image_dimensions"`
	Statistics      score.Summary  `json:"statistics"`
	EvaluationData  []SessionGuess `json:"evaluation_data"`
}

// Writer persists per-sample result documents into one output directory
// under a fixed filename convention. Writes are atomic
// replace-or-create; overwriting an existing result for the same sample
// supports re-annotation.
type Writer struct {
	dir  string
	conv resume.Convention
}

// NewWriter creates the output directory if needed and returns a writer
// bound to it.
func NewWriter(dir string, conv resume.Convention) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %v", dir, err)
	}
	return &Writer{dir: dir, conv: conv}, nil
}

// Dir returns the output directory the writer is bound to.
func (w *Writer) Dir() string { return w.dir }

// Path returns the result file path for a sample identifier.
func (w *Writer) Path(id string) string {
	return filepath.Join(w.dir, w.conv.Filename(id))
}

// WriteDescription merges a description record into the sample and
// writes the result document.
func (w *Writer) WriteDescription(s dataset.Sample, rec dataset.DescriptionRecord) error {
	s.UserTextDes = rec.Text
	s.UserAudioDes = rec.AudioTranscript
	if rec.AudioFile != "" {
		s.UserAudioFile = filepath.Base(rec.AudioFile)
	}
	return w.write(s.MaskID(), s)
}

// WriteGuess writes the evaluation document for a sample.
func (w *Writer) WriteGuess(s dataset.Sample, rec dataset.GuessRecord) error {
	return w.write(s.MaskID(), GuessResult{SampleData: s, EvaluationData: rec})
}

// WriteSelection writes the fixed-choice document for a sample.
func (w *Writer) WriteSelection(s dataset.Sample, rec dataset.SelectionRecord) error {
	return w.write(s.MaskID(), SelectionResult{SampleData: s, EvaluationData: rec})
}

func (w *Writer) write(id string, doc interface{}) error {
	path := w.Path(id)
	tmp, err := os.CreateTemp(w.dir, ".result-*")
	if err != nil {
		return fmt.Errorf("failed to create temp result file: %v", err)
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode result for '%s': %v", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace result file '%s': %v", path, err)
	}
	return nil
}

// ReadGuess loads a previously written evaluation document.
func ReadGuess(path string) (*GuessResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file '%s': %v", path, err)
	}
	var result GuessResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result file '%s': %v", path, err)
	}
	return &result, nil
}

// ReadSelection loads a previously written fixed-choice document.
func ReadSelection(path string) (*SelectionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file '%s': %v", path, err)
	}
	var result SelectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result file '%s': %v", path, err)
	}
	return &result, nil
}

// ReadSample loads a previously written collection document.
func ReadSample(path string) (*dataset.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file '%s': %v", path, err)
	}
	var s dataset.Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse result file '%s': %v", path, err)
	}
	return &s, nil
}

// WriteSession writes a single-session aggregate document with a
// timestamped filename and returns the path.
func WriteSession(dir, imageName string, result SessionResult, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory '%s': %v", dir, err)
	}
	stamp := now.Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("rel_%s_%s.json", imageName, stamp))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session result: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write session result '%s': %v", path, err)
	}
	return path, nil
}

// WritePixelDescriptions writes the single-image collection document: the
// session's image path plus its described pixel entries, under a
// timestamped filename. Returns the path.
func WritePixelDescriptions(dir, imageName string, session dataset.PixelSession, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory '%s': %v", dir, err)
	}
	stamp := now.Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("pixel_descriptions_%s_%s.json", imageName, stamp))

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write session '%s': %v", path, err)
	}
	return path, nil
}

// ReadSession loads a previously written session document.
func ReadSession(path string) (*SessionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file '%s': %v", path, err)
	}
	var result SessionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse session file '%s': %v", path, err)
	}
	return &result, nil
}
