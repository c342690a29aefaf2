// Package interact implements the single-sample interaction boundary as
// terminal prompters. The batch driver only sees the three outcomes
// (completed, cancelled, error); everything about how the answer is
// collected stays behind the Interactor interface.
package interact

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-basic/uuid"

	"github.com/bdougie/pixelpoint/internal/dataset"
	"github.com/bdougie/pixelpoint/internal/driver"
	"github.com/bdougie/pixelpoint/internal/mask"
	"github.com/bdougie/pixelpoint/internal/score"
	"github.com/bdougie/pixelpoint/internal/speech"
)

// stopTimeout bounds how long stopping a recording may wait on the
// capture goroutine before using the partial transcript.
const stopTimeout = 3 * time.Second

type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) console {
	return console{in: bufio.NewReader(in), out: out}
}

func (c console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirmQuit asks the destructive-close question. Only an explicit yes
// cancels the batch.
func (c console) confirmQuit() (bool, error) {
	c.printf("Are you sure you want to stop? No more images will be shown. [y/N]: ")
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
}

// DescriptionConsole collects a free-text description for each sample,
// with optional speech recording and live transcription.
type DescriptionConsole struct {
	console
	ImageDir    string
	AudioDir    string
	Recorder    *speech.Recorder
	Transcriber *speech.Transcriber
	Logger      *slog.Logger
}

// NewDescriptionConsole returns a description prompter on stdin/stdout.
// Recorder and Transcriber stay nil when audio is disabled.
func NewDescriptionConsole(imageDir, audioDir string, rec *speech.Recorder, tr *speech.Transcriber, logger *slog.Logger) *DescriptionConsole {
	return &DescriptionConsole{
		console:     newConsole(os.Stdin, os.Stdout),
		ImageDir:    imageDir,
		AudioDir:    audioDir,
		Recorder:    rec,
		Transcriber: tr,
		Logger:      logger,
	}
}

// Present prompts for one description. Commands: plain text is the
// description, "record" starts an audio take, "quit" cancels the batch
// after confirmation.
func (d *DescriptionConsole) Present(ctx context.Context, s dataset.Sample, position, total int) (driver.Outcome, error) {
	d.printf("\n[%d/%d] %s\n", position, total, ImagePathFor(s, d.ImageDir))
	d.printf("Describe the highlighted object so it can be uniquely identified.\n")
	if d.Recorder != nil {
		d.printf("Type the description, 'record' for an audio take, or 'quit'.\n")
	} else {
		d.printf("Type the description, or 'quit'.\n")
	}

	rec := dataset.DescriptionRecord{SampleID: s.MaskID()}
	for {
		d.printf("> ")
		line, err := d.readLine()
		if err != nil {
			return driver.Outcome{}, fmt.Errorf("input closed: %v", err)
		}
		switch {
		case strings.EqualFold(line, "quit"):
			yes, err := d.confirmQuit()
			if err != nil {
				return driver.Outcome{}, err
			}
			if yes {
				return driver.Outcome{Cancelled: true}, nil
			}
		case strings.EqualFold(line, "record") && d.Recorder != nil:
			transcript, audioFile, err := d.recordTake(ctx, s)
			if err != nil {
				// Device or network trouble is recoverable: the
				// annotator can still type the description.
				d.printf("Recording failed (%v). Type the description instead.\n", err)
				d.Logger.Warn("audio take failed", "id", s.MaskID(), "error", err)
				continue
			}
			rec.AudioTranscript = transcript
			rec.AudioFile = audioFile
			d.printf("Transcript: %q\n", transcript)
			d.printf("Type the text description (or press Enter to reuse the transcript).\n")
		case line == "":
			if rec.AudioTranscript == "" {
				d.printf("The description cannot be empty.\n")
				continue
			}
			rec.Text = rec.AudioTranscript
			rec.CreatedAt = time.Now()
			return driver.Outcome{Description: &rec}, nil
		default:
			rec.Text = line
			rec.CreatedAt = time.Now()
			return driver.Outcome{Description: &rec}, nil
		}
	}
}

// recordTake captures one recording session, streams it through the
// transcriber while the human speaks, and saves the WAV.
func (d *DescriptionConsole) recordTake(ctx context.Context, s dataset.Sample) (string, string, error) {
	stream := speech.NewChunkStream(64)
	if err := d.Recorder.Start(stream.Send); err != nil {
		stream.Close()
		return "", "", err
	}

	var interim, final string
	transcribeDone := make(chan error, 1)
	if d.Transcriber != nil {
		go func() {
			transcribeDone <- d.Transcriber.Stream(ctx, stream.Chunks(), speech.Callbacks{
				Interim: func(text string) {
					interim = text
					d.printf("\r... %s", text)
				},
				Final: func(text string) {
					final = text
				},
			})
		}()
	} else {
		transcribeDone <- nil
	}

	d.printf("Recording... speak now, press Enter to stop.\n")
	if _, err := d.readLine(); err != nil {
		d.Recorder.Stop(stopTimeout)
		stream.Close()
		return "", "", err
	}

	frames := d.Recorder.Stop(stopTimeout)
	stream.Close()

	select {
	case err := <-transcribeDone:
		if err != nil {
			d.Logger.Warn("transcription failed, keeping partial text", "error", err)
		}
	case <-time.After(stopTimeout):
		d.Logger.Warn("transcription did not finish in time, using partial text")
	}
	d.printf("\n")

	transcript := final
	if transcript == "" {
		transcript = interim
	}

	audioName := fmt.Sprintf("%s_%s.wav", s.MaskID(), uuid.New()[:8])
	audioPath := filepath.Join(d.AudioDir, audioName)
	if err := speech.WriteWAV(audioPath, frames); err != nil {
		return "", "", err
	}
	d.Logger.Info("audio recording saved", "path", audioPath, "samples", len(frames))
	return transcript, audioName, nil
}

// GuessConsole collects a localization guess for each described region
// and scores it against the sample's mask.
type GuessConsole struct {
	console
	ImageDir string
	MaskDir  string
	Logger   *slog.Logger
}

// NewGuessConsole returns a guess prompter on stdin/stdout.
func NewGuessConsole(imageDir, maskDir string, logger *slog.Logger) *GuessConsole {
	return &GuessConsole{
		console:  newConsole(os.Stdin, os.Stdout),
		ImageDir: imageDir,
		MaskDir:  maskDir,
		Logger:   logger,
	}
}

// Present shows the recorded description and reads one guess: an "x,y"
// coordinate, "cannot" / "multiple" for the categorical answers, or
// "quit" to cancel the batch.
func (g *GuessConsole) Present(ctx context.Context, s dataset.Sample, position, total int) (driver.Outcome, error) {
	imagePath := ImagePathFor(s, g.ImageDir)
	width, height, err := mask.ImageSize(imagePath)
	if err != nil {
		return driver.Outcome{}, err
	}

	m := g.loadMask(s, width, height)

	desc := s.UserTextDes
	if desc == "" {
		desc = s.UserAudioDes
	}

	g.printf("\n[%d/%d] %s (%dx%d)\n", position, total, imagePath, width, height)
	g.printf("Description: %q\n", desc)
	g.printf("Enter your guess as 'x,y', or 'cannot' / 'multiple' / 'quit'.\n")

	for {
		g.printf("> ")
		line, err := g.readLine()
		if err != nil {
			return driver.Outcome{}, fmt.Errorf("input closed: %v", err)
		}
		switch {
		case strings.EqualFold(line, "quit"):
			yes, err := g.confirmQuit()
			if err != nil {
				return driver.Outcome{}, err
			}
			if yes {
				return driver.Outcome{Cancelled: true}, nil
			}
		case strings.EqualFold(line, "cannot"):
			rec := score.CannotTell()
			return driver.Outcome{Guess: &rec}, nil
		case strings.EqualFold(line, "multiple"):
			rec := score.MultipleMatch()
			return driver.Outcome{Guess: &rec}, nil
		default:
			p, ok := parsePoint(line, width, height)
			if !ok {
				g.printf("Could not read that as 'x,y'.\n")
				continue
			}
			rec := score.ScoreMaskGuess(m, p)
			if rec.InMask == 1 {
				g.printf("Your guess is inside the object.\n")
			} else {
				g.printf("Your guess was %.2f pixels away from the object.\n", rec.Distance)
			}
			return driver.Outcome{Guess: &rec}, nil
		}
	}
}

// DefaultSelectionOptions are the fixed choices offered for each
// sample in a selection session.
var DefaultSelectionOptions = []string{"Left", "Small", "Light Gray", "Square"}

// SelectionConsole presents each sample with a fixed set of options in
// randomized order and records the one the human picks.
type SelectionConsole struct {
	console
	ImageDir string
	Options  []string
	Logger   *slog.Logger

	shuffle func([]string)
}

// NewSelectionConsole returns a selection prompter on stdin/stdout.
// Empty options fall back to DefaultSelectionOptions.
func NewSelectionConsole(imageDir string, options []string, logger *slog.Logger) *SelectionConsole {
	if len(options) == 0 {
		options = DefaultSelectionOptions
	}
	return &SelectionConsole{
		console:  newConsole(os.Stdin, os.Stdout),
		ImageDir: imageDir,
		Options:  options,
		Logger:   logger,
		shuffle: func(opts []string) {
			rand.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
		},
	}
}

// Present shows the shuffled options and reads one choice: the option
// number, the option text, or "quit" to cancel the batch. The order
// changes for every sample so positional habits don't bias the answers.
func (sc *SelectionConsole) Present(ctx context.Context, s dataset.Sample, position, total int) (driver.Outcome, error) {
	shown := make([]string, len(sc.Options))
	copy(shown, sc.Options)
	sc.shuffle(shown)

	sc.printf("\n[%d/%d] %s\n", position, total, ImagePathFor(s, sc.ImageDir))
	sc.printf("Select the option describing the object pointed by the arrow compared to the other one. Note the options change order for each image.\n")
	for i, opt := range shown {
		sc.printf("  %d) %s\n", i+1, opt)
	}
	sc.printf("Enter the option number or text, or 'quit'.\n")

	for {
		sc.printf("> ")
		line, err := sc.readLine()
		if err != nil {
			return driver.Outcome{}, fmt.Errorf("input closed: %v", err)
		}
		if strings.EqualFold(line, "quit") {
			yes, err := sc.confirmQuit()
			if err != nil {
				return driver.Outcome{}, err
			}
			if yes {
				return driver.Outcome{Cancelled: true}, nil
			}
			continue
		}
		choice, ok := matchOption(line, shown)
		if !ok {
			sc.printf("Pick one of the listed options.\n")
			continue
		}
		rec := dataset.SelectionRecord{
			SampleID:  s.MaskID(),
			Choice:    choice,
			CreatedAt: time.Now(),
		}
		return driver.Outcome{Selection: &rec}, nil
	}
}

// matchOption resolves a typed answer against the displayed options,
// by 1-based number or case-insensitive text.
func matchOption(line string, shown []string) (string, bool) {
	if n, err := strconv.Atoi(line); err == nil {
		if n >= 1 && n <= len(shown) {
			return shown[n-1], true
		}
		return "", false
	}
	for _, opt := range shown {
		if strings.EqualFold(line, opt) {
			return opt, true
		}
	}
	return "", false
}

// loadMask degrades to an all-false mask when the file is missing or
// unreadable so one bad mask doesn't kill the session.
func (g *GuessConsole) loadMask(s dataset.Sample, width, height int) *mask.Mask {
	if s.MaskPath == "" {
		return mask.New(width, height)
	}
	path := filepath.Join(g.MaskDir, s.MaskPath)
	m, err := mask.Load(path, width, height)
	if err != nil {
		g.Logger.Warn("mask unavailable, using empty mask", "path", path, "error", err)
		return mask.New(width, height)
	}
	return m
}

// parsePoint reads "x,y" and clamps it to the image bounds, matching
// how click coordinates are clamped.
func parsePoint(line string, width, height int) (dataset.Point, bool) {
	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return dataset.Point{}, false
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return dataset.Point{}, false
	}
	return dataset.Point{X: clamp(x, width-1), Y: clamp(y, height-1)}, true
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// ImagePathFor resolves a sample's image path, preferring an explicit
// path that exists and falling back to <imageDir>/<image_id>.jpg.
func ImagePathFor(s dataset.Sample, imageDir string) string {
	if s.ImagePath != "" {
		if _, err := os.Stat(s.ImagePath); err == nil {
			return s.ImagePath
		}
	}
	return filepath.Join(imageDir, s.ImageID+".jpg")
}
