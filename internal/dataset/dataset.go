package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Point is a pixel coordinate. It serializes as the two-element array
// used throughout the sample files.
type Point struct {
	X int
	Y int
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var coords [2]int
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("invalid point: %v", err)
	}
	p.X, p.Y = coords[0], coords[1]
	return nil
}

// Distance is a pixel distance that can be infinite: a guess scored
// against an empty mask has no cell to measure to. JSON numbers cannot
// carry infinities, so they serialize as the strings "Infinity" and
// "-Infinity".
type Distance float64

func (d Distance) MarshalJSON() ([]byte, error) {
	f := float64(d)
	if math.IsInf(f, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(f, -1) {
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(f)
}

func (d *Distance) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Infinity"`:
		*d = Distance(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*d = Distance(math.Inf(-1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid distance: %v", err)
	}
	*d = Distance(f)
	return nil
}

// Sample is one unit of annotation work: an image plus an optional mask
// reference or ground-truth point. The user_* fields are empty until a
// collection tool fills them in.
type Sample struct {
	ImageID   string `json:"image_id"`
	ImagePath string `json:"image_path,omitempty"`
	MaskPath  string `json:"mask_path,omitempty"`
	Point     *Point `json:"pixel_position,omitempty"`

	UserTextDes   string `json:"user_text_des,omitempty"`
	UserAudioDes  string `json:"user_audio_des,omitempty"`
	UserAudioFile string `json:"user_audio_file,omitempty"`
}

// MaskID derives the identifier used for result filenames: the mask
// reference with its image extension stripped, falling back to the
// image id for samples without a mask.
func (s Sample) MaskID() string {
	if s.MaskPath == "" {
		return s.ImageID
	}
	base := filepath.Base(s.MaskPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DescriptionRecord is what an annotator produces for one sample.
type DescriptionRecord struct {
	SampleID        string    `json:"sample_id"`
	Text            string    `json:"text"`
	AudioTranscript string    `json:"audio_transcript,omitempty"`
	AudioFile       string    `json:"audio_file,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// GuessRecord is what an evaluator produces for one sample. Point is nil
// when the evaluator picked one of the categorical options instead of
// clicking; the int flags mirror the on-disk format.
type GuessRecord struct {
	Point         *Point   `json:"guessed_position"`
	Distance      Distance `json:"distance"`
	InMask        int      `json:"in_mask"`
	CannotTell    int      `json:"cannot_tell"`
	MultipleMatch int      `json:"multiple_match"`
}

// Sentinel reports whether the record carries a categorical answer
// rather than a coordinate guess.
func (g GuessRecord) Sentinel() bool {
	return g.CannotTell == 1 || g.MultipleMatch == 1
}

// SelectionRecord is a fixed-choice answer.
type SelectionRecord struct {
	SampleID  string    `json:"sample_id"`
	Choice    string    `json:"selected_option"`
	CreatedAt time.Time `json:"timestamp"`
}

// PixelEntry pairs a description with its true pixel location inside a
// single-image session file.
type PixelEntry struct {
	Description string `json:"description"`
	Position    Point  `json:"pixel_position"`
}

// PixelSession is the input document for the single-image pixel tools.
type PixelSession struct {
	ImagePath string       `json:"image_path"`
	PixelData []PixelEntry `json:"pixel_data"`
}

// Load reads samples from a JSON array file or, when the path ends in
// .jsonl, from line-delimited JSON.
func Load(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file '%s': %v", path, err)
	}
	defer f.Close()

	if strings.HasSuffix(path, ".jsonl") {
		var samples []Sample
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			var s Sample
			if err := json.Unmarshal([]byte(text), &s); err != nil {
				return nil, fmt.Errorf("failed to parse line %d of '%s': %v", line, path, err)
			}
			samples = append(samples, s)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read '%s': %v", path, err)
		}
		return samples, nil
	}

	var samples []Sample
	if err := json.NewDecoder(f).Decode(&samples); err != nil {
		return nil, fmt.Errorf("failed to parse sample file '%s': %v", path, err)
	}
	return samples, nil
}

// LoadPixelSession reads a single-image session document.
func LoadPixelSession(path string) (*PixelSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file '%s': %v", path, err)
	}
	var session PixelSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session file '%s': %v", path, err)
	}
	return &session, nil
}
