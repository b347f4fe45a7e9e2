package audio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/rbright/hark/internal/capture"
)

// FrameBytes is the fixed frame size handed to the segmenter:
// 20ms @ 16kHz mono s16.
const FrameBytes = 640

// Source streams fixed-size PCM frames from one selected Pulse source.
// It implements capture.FrameSource: ReadFrame blocks until a frame is
// available and returns io.EOF once the stream is closed and drained.
type Source struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	frames chan []byte
	stopCh chan struct{}

	mu      sync.Mutex
	pending []byte
	closed  bool

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

var _ capture.FrameSource = (*Source)(nil)

// Open creates and starts a 16kHz mono s16 record stream on the given
// device. Cancelling ctx closes the source.
func Open(ctx context.Context, selected Device) (*Source, error) {
	client, err := newClient()
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	s := &Source{
		device: selected,
		client: client,
		frames: make(chan []byte, 128),
		stopCh: make(chan struct{}),
	}

	writer := pulse.NewWriter(writerFunc(s.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(16000),
		pulse.RecordBufferFragmentSize(FrameBytes),
		pulse.RecordMediaName("hark capture"),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	s.stream = stream
	stream.Start()

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return s, nil
}

// Device returns capture metadata for logging and diagnostics.
func (s *Source) Device() Device {
	return s.device
}

// BytesCaptured reports total bytes accepted from Pulse.
func (s *Source) BytesCaptured() int64 {
	return s.bytes.Load()
}

// ReadFrame blocks until the next frame arrives. After Close, buffered
// frames are drained first, then io.EOF.
func (s *Source) ReadFrame() ([]byte, error) {
	frame, ok := <-s.frames
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

// Close halts the stream, flushes any residual partial frame, and
// closes the frame channel exactly once. Safe to call repeatedly and
// from any goroutine.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopCh)
	s.mu.Unlock()

	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
	}
	if s.client != nil {
		s.client.Close()
	}

	s.inflight.Wait()

	s.mu.Lock()
	pending := append([]byte(nil), s.pending...)
	s.pending = nil
	s.mu.Unlock()

	if len(pending) > 0 {
		select {
		case s.frames <- pending:
		default:
		}
	}

	close(s.frames)
	return nil
}

// onPCM receives raw Pulse buffers and emits FrameBytes slices to s.frames.
func (s *Source) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	select {
	case <-s.stopCh:
		return 0, io.EOF
	default:
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, io.EOF
	}
	// Guard Add under the same mutex as s.closed to avoid Add/Wait races.
	s.inflight.Add(1)

	s.pending = append(s.pending, buffer...)

	frames := make([][]byte, 0, len(s.pending)/FrameBytes)
	for len(s.pending) >= FrameBytes {
		frame := make([]byte, FrameBytes)
		copy(frame, s.pending[:FrameBytes])
		s.pending = s.pending[FrameBytes:]
		frames = append(frames, frame)
	}
	s.mu.Unlock()
	defer s.inflight.Done()

	s.bytes.Add(int64(len(buffer)))

	for _, frame := range frames {
		select {
		case <-s.stopCh:
			return 0, io.EOF
		case s.frames <- frame:
		}
	}

	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
