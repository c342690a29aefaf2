package speech

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// Audio capture parameters. The transcription API only supports mono
// 16-bit PCM.
const (
	SampleRate  = 16000
	chunkFrames = SampleRate / 10 // 100ms
)

// Recorder owns the audio capture device for at most one recording
// session at a time. Starting while a session is active is a no-op.
type Recorder struct {
	mu        sync.Mutex
	recording bool
	stop      chan struct{}
	done      chan struct{}
	frames    []int16
	logger    *slog.Logger
}

// NewRecorder returns an idle recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Recording reports whether a capture session is active.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Start opens the default input device and begins capturing. Each chunk
// of captured audio is forwarded to onChunk as little-endian 16-bit PCM
// so a streaming transcriber can consume it while the human is still
// speaking. Device failures are returned here and leave the recorder
// idle.
func (r *Recorder) Start(onChunk func([]byte)) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		return nil
	}
	r.recording = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	r.frames = nil
	r.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		r.reset()
		return fmt.Errorf("failed to initialize audio: %v", err)
	}

	buf := make([]int16, chunkFrames)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(SampleRate), len(buf), buf)
	if err != nil {
		portaudio.Terminate()
		r.reset()
		return fmt.Errorf("failed to open audio device: %v", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		r.reset()
		return fmt.Errorf("failed to start audio stream: %v", err)
	}

	go func() {
		defer close(r.done)
		defer portaudio.Terminate()
		defer stream.Close()
		defer stream.Stop()

		for {
			select {
			case <-r.stop:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				r.logger.Warn("audio read failed", "error", err)
				return
			}

			// A read that was in flight when Stop fired may complete
			// long after the caller gave up waiting; its chunk must
			// not be forwarded.
			select {
			case <-r.stop:
				return
			default:
			}

			r.mu.Lock()
			r.frames = append(r.frames, buf...)
			r.mu.Unlock()

			if onChunk != nil {
				chunk := make([]byte, len(buf)*2)
				for i, s := range buf {
					chunk[2*i] = byte(s)
					chunk[2*i+1] = byte(s >> 8)
				}
				onChunk(chunk)
			}
		}
	}()

	return nil
}

// Stop signals the capture goroutine and waits for it with a bounded
// timeout, so a wedged device read cannot block the caller forever.
// Returns whatever was captured.
func (r *Recorder) Stop(timeout time.Duration) []int16 {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil
	}
	close(r.stop)
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
	case <-time.After(timeout):
		r.logger.Warn("audio capture did not stop in time, using partial recording")
	}

	r.mu.Lock()
	frames := r.frames
	r.recording = false
	r.mu.Unlock()
	return frames
}

func (r *Recorder) reset() {
	r.mu.Lock()
	r.recording = false
	r.mu.Unlock()
}

// WriteWAV saves captured frames as a mono 16-bit PCM WAV file.
func WriteWAV(path string, frames []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create audio file '%s': %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:   make([]int, len(frames)),
	}
	for i, s := range frames {
		buf.Data[i] = int(s)
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data: %v", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize audio file '%s': %v", path, err)
	}
	return nil
}
