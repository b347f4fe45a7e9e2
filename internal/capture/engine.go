package capture

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbright/hark/internal/fsm"
	"github.com/rbright/hark/internal/vad"
)

// joinTimeout bounds how long Stop waits for the capture goroutine
// before forcing device release anyway.
const joinTimeout = 500 * time.Millisecond

// OpenFunc acquires the frame source. It is called inside Start so a
// device failure surfaces synchronously before the loop spawns.
type OpenFunc func() (FrameSource, error)

// Engine owns the single capture goroutine: it reads frames from the
// source, classifies them, feeds the segmenter, and holds the mute and
// lifecycle flags. Mute/Unmute/Stop/State may be called from any
// goroutine; all segmentation state stays on the capture goroutine.
type Engine struct {
	params     Params
	classifier vad.Classifier
	cb         Callbacks
	logger     *slog.Logger
	open       OpenFunc

	started atomic.Bool
	running atomic.Bool
	muted   atomic.Bool

	// inSpeech mirrors the segmenter's state for cross-goroutine Status
	// reads; it is maintained via stream-start/stream-end hooks.
	inSpeech atomic.Bool
	bytes    atomic.Int64

	mu   sync.Mutex
	src  FrameSource
	done chan struct{}
}

// NewEngine validates params and builds a stopped engine.
func NewEngine(params Params, open OpenFunc, cb Callbacks, logger *slog.Logger) (*Engine, error) {
	if open == nil {
		return nil, errors.New("frame source opener is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("capture params: %w", err)
	}
	return &Engine{
		params:     params,
		classifier: vad.NewClassifier(params.AmplitudeThreshold),
		cb:         cb,
		logger:     logger,
		open:       open,
	}, nil
}

// Start opens the frame source and spawns the capture loop. Calling
// Start while already running is a no-op. A device-open failure is
// returned synchronously and the engine stays stopped.
func (e *Engine) Start() error {
	if !e.started.CompareAndSwap(false, true) {
		return nil
	}

	src, err := e.open()
	if err != nil {
		e.started.Store(false)
		return fmt.Errorf("open frame source: %w", err)
	}

	seg := NewSegmenter(e.params, e.hookedCallbacks(), e.logger)
	done := make(chan struct{})

	e.mu.Lock()
	e.src = src
	e.done = done
	e.mu.Unlock()

	e.inSpeech.Store(false)
	e.running.Store(true)
	go e.loop(src, seg, done)

	if e.logger != nil {
		e.logger.Info("capture started",
			"sample_rate", e.params.SampleRate,
			"threshold", e.params.AmplitudeThreshold,
		)
	}
	return nil
}

// loop is the single capture goroutine: read, classify, segment, and
// re-check both timeout conditions every iteration.
func (e *Engine) loop(src FrameSource, seg *Segmenter, done chan struct{}) {
	defer close(done)
	defer e.running.Store(false)

	for e.running.Load() {
		frame, err := src.ReadFrame()
		if err != nil {
			if e.running.Load() && !errors.Is(err, io.EOF) && e.logger != nil {
				e.logger.Warn("frame read failed", "error", err.Error())
			}
			break
		}

		now := time.Now()
		e.bytes.Add(int64(len(frame)))

		muted := e.muted.Load()
		if muted && seg.State() == fsm.StateSpeech {
			// Mute is an explicit cancel: abort rather than letting the
			// pause timer run out.
			seg.Abort(now)
		}

		voiced := !muted && e.classifier.Voiced(frame)
		seg.Feed(frame, voiced, now)
	}

	// Loop teardown is not a natural pause: discard in-progress speech.
	seg.Abort(time.Now())
}

// Stop halts the loop, unblocks the pending read, joins the goroutine
// with a bounded timeout, and releases the device regardless of the
// join outcome. Stop before Start and repeated Stop are no-ops.
func (e *Engine) Stop() {
	if !e.started.Load() {
		return
	}
	e.running.Store(false)

	e.mu.Lock()
	src := e.src
	done := e.done
	e.mu.Unlock()

	if src != nil {
		// Unblock the capture goroutine's ReadFrame.
		_ = src.Close()
	}

	if done != nil {
		select {
		case <-done:
		case <-time.After(joinTimeout):
			if e.logger != nil {
				e.logger.Warn("capture loop did not exit before join timeout")
			}
		}
	}

	if src != nil {
		// Forced release; Close is idempotent.
		_ = src.Close()
	}

	e.mu.Lock()
	e.src = nil
	e.done = nil
	e.mu.Unlock()

	e.inSpeech.Store(false)
	e.started.Store(false)

	if e.logger != nil {
		e.logger.Info("capture stopped", "bytes_captured", e.bytes.Load())
	}
}

// Mute forces silence classification and aborts any in-progress speech
// on the capture goroutine's next iteration. No-op when already muted.
func (e *Engine) Mute() {
	if !e.muted.CompareAndSwap(false, true) {
		return
	}
	e.notifyMute(true)
}

// Unmute clears the mute flag; the next frame is classified normally.
func (e *Engine) Unmute() {
	if !e.muted.CompareAndSwap(true, false) {
		return
	}
	e.notifyMute(false)
}

// Muted reports the current mute flag.
func (e *Engine) Muted() bool {
	return e.muted.Load()
}

// Running reports whether the capture loop is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// BytesCaptured reports total PCM bytes read from the source.
func (e *Engine) BytesCaptured() int64 {
	return e.bytes.Load()
}

// State summarizes the engine for status queries.
func (e *Engine) State() string {
	switch {
	case !e.running.Load():
		return "idle"
	case e.muted.Load():
		return "muted"
	case e.inSpeech.Load():
		return "speech"
	default:
		return "listening"
	}
}

// hookedCallbacks wraps the user callback set so the engine can mirror
// speech state for cross-goroutine reads.
func (e *Engine) hookedCallbacks() Callbacks {
	cb := e.cb
	userStart := cb.OnStreamStart
	cb.OnStreamStart = func(sink *Sink) {
		e.inSpeech.Store(true)
		if userStart != nil {
			userStart(sink)
		}
	}
	userEnd := cb.OnStreamEnd
	cb.OnStreamEnd = func() {
		e.inSpeech.Store(false)
		if userEnd != nil {
			userEnd()
		}
	}
	return cb
}

func (e *Engine) notifyMute(muted bool) {
	if e.cb.OnMuteChanged == nil {
		return
	}
	emit(e.logger, "mute-changed", func() { e.cb.OnMuteChanged(muted) })
}
