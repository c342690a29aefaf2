package speech

import "sync"

// ChunkStream is the bounded pipe between the capture callback and a
// streaming consumer. Sends never block and become no-ops once the
// stream is closed, so a capture goroutine that outlives a bounded-wait
// stop cannot hit a closed channel.
type ChunkStream struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

// NewChunkStream returns a stream buffering up to capacity chunks.
func NewChunkStream(capacity int) *ChunkStream {
	return &ChunkStream{ch: make(chan []byte, capacity)}
}

// Send forwards a chunk without blocking. Chunks are dropped when the
// buffer is full or the stream is already closed.
func (s *ChunkStream) Send(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- chunk:
	default:
	}
}

// Close ends the stream. Safe to call more than once.
func (s *ChunkStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Chunks is the consumer side of the stream; it is closed by Close.
func (s *ChunkStream) Chunks() <-chan []byte { return s.ch }
