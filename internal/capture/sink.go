package capture

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rbright/hark/internal/wav"
)

// Sink is the live byte stream for one in-progress utterance. The
// capture loop owns the producer end; the consumer reads on its own
// goroutine via io.Reader. The buffer is bounded: when the consumer
// falls behind, new chunks are dropped rather than blocking capture.
type Sink struct {
	ch     chan []byte
	closed atomic.Bool

	closeOnce sync.Once
	logger    *slog.Logger
	dropped   atomic.Int64

	leftover []byte
}

// newSink builds a sink with the stream header already queued, so the
// consumer sees a self-describing byte stream from the first read.
func newSink(format wav.Format, depth int, logger *slog.Logger) *Sink {
	s := &Sink{
		ch:     make(chan []byte, depth),
		logger: logger,
	}
	s.ch <- format.StreamHeader()
	return s
}

// write queues one payload chunk, dropping it when the buffer is full
// or the sink is already closed. Called only from the capture loop.
func (s *Sink) write(p []byte) {
	if s.closed.Load() || len(p) == 0 {
		return
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)

	select {
	case s.ch <- chunk:
	default:
		n := s.dropped.Add(1)
		if s.logger != nil {
			s.logger.Debug("live sink buffer full, dropping chunk", "dropped_total", n)
		}
	}
}

// Close ends the stream. Safe to call more than once; reads drain any
// buffered chunks and then return io.EOF.
func (s *Sink) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.ch)
	})
}

// Read implements io.Reader for the consumer end.
func (s *Sink) Read(p []byte) (int, error) {
	if len(s.leftover) == 0 {
		chunk, ok := <-s.ch
		if !ok {
			return 0, io.EOF
		}
		s.leftover = chunk
	}

	n := copy(p, s.leftover)
	s.leftover = s.leftover[n:]
	return n, nil
}

// Dropped reports how many chunks were discarded due to a slow consumer.
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}
