package capture

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/hark/internal/fsm"
	"github.com/rbright/hark/internal/wav"
)

// Segmenter consumes classified frames and decides speech-start,
// speech-continue, speech-end, and forced-cut events. All state is
// owned by the capture goroutine; nothing here is safe for concurrent
// use.
type Segmenter struct {
	params Params
	format wav.Format
	cb     Callbacks
	logger *slog.Logger

	state        fsm.State
	inSilence    bool
	speechStart  time.Time
	silenceStart time.Time
	buf          []byte
	sink         *Sink
}

// NewSegmenter builds a segmenter in the initial silence state.
func NewSegmenter(params Params, cb Callbacks, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		params: params,
		format: params.Format(),
		cb:     cb,
		logger: logger,
		state:  fsm.StateSilence,
	}
}

// Feed processes one classified frame observed at time now.
//
// The max-duration check runs first on every call so a capped segment
// is cut even when the pause timeout would also apply, and so dangling
// speech with no renewed activity is still closed by wall-clock time.
func (s *Segmenter) Feed(frame []byte, voiced bool, now time.Time) {
	if s.state == fsm.StateSpeech && now.Sub(s.speechStart) >= s.params.MaxUtterance {
		// Reached the cap: always emit, even mid-speech. When a pause is
		// already pending, speech stopped at silenceStart; measure to
		// there so cap cuts and pause cuts report speech-only durations.
		end := now
		if !s.silenceStart.IsZero() {
			end = s.silenceStart
		}
		s.finish(fsm.EventCap, end, true)
	}

	if voiced {
		s.feedVoiced(frame, now)
		return
	}
	s.feedSilent(now)
}

func (s *Segmenter) feedVoiced(frame []byte, now time.Time) {
	if s.state == fsm.StateSilence {
		s.transition(fsm.EventVoice)
		s.inSilence = false
		s.speechStart = now
		s.silenceStart = time.Time{}

		s.sink = newSink(s.format, s.params.SinkDepth, s.logger)
		sink := s.sink
		emit(s.logger, "speech", s.cb.OnSpeech)
		if s.cb.OnStreamStart != nil {
			emit(s.logger, "stream-start", func() { s.cb.OnStreamStart(sink) })
		}
	} else {
		// Renewed activity clears any pending pause.
		s.silenceStart = time.Time{}
	}

	s.buf = append(s.buf, frame...)
	s.sink.write(frame)
	if s.cb.OnStreamBytes != nil {
		emit(s.logger, "stream-bytes", func() { s.cb.OnStreamBytes(frame) })
	}
}

func (s *Segmenter) feedSilent(now time.Time) {
	switch s.state {
	case fsm.StateSpeech:
		if s.silenceStart.IsZero() {
			s.silenceStart = now
			return
		}
		if now.Sub(s.silenceStart) >= s.params.PauseEnd {
			end := s.silenceStart
			keep := end.Sub(s.speechStart) >= s.params.MinUtterance
			s.finish(fsm.EventPause, end, keep)
		}
	case fsm.StateSilence:
		if !s.inSilence {
			s.inSilence = true
			s.silenceStart = now
			emit(s.logger, "silence", s.cb.OnSilence)
		}
	}
}

// Abort force-ends any in-progress speech without emitting an
// utterance. Used for mute and shutdown; a no-op in silence.
func (s *Segmenter) Abort(now time.Time) {
	if s.state != fsm.StateSpeech {
		return
	}
	s.finish(fsm.EventAbort, now, false)
}

// State returns the current segment state. Capture-goroutine only.
func (s *Segmenter) State() fsm.State {
	return s.state
}

// finish closes the live sink, optionally emits the buffered utterance,
// and resets segment bookkeeping. end is where speech stopped and is
// used for the utterance duration.
func (s *Segmenter) finish(event fsm.Event, end time.Time, keep bool) {
	duration := end.Sub(s.speechStart)

	emit(s.logger, "stream-end", s.cb.OnStreamEnd)
	if s.sink != nil {
		s.sink.Close()
		s.sink = nil
	}

	if keep && len(s.buf) > 0 && s.cb.OnUtterance != nil {
		u := Utterance{
			ID:        uuid.New(),
			WAV:       s.format.Encode(s.buf),
			Duration:  duration,
			StartedAt: s.speechStart,
		}
		emit(s.logger, "utterance", func() { s.cb.OnUtterance(u) })
	} else if !keep && s.logger != nil {
		s.logger.Debug("utterance discarded",
			"reason", string(event),
			"duration_ms", duration.Milliseconds(),
			"bytes", len(s.buf),
		)
	}

	s.buf = nil
	s.transition(event)
	s.inSilence = false
	s.silenceStart = time.Time{}
	s.speechStart = time.Time{}
}

// transition applies one fsm event, logging instead of failing on an
// illegal edge since the segmenter derives events from its own state.
func (s *Segmenter) transition(event fsm.Event) {
	next, err := fsm.Transition(s.state, event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("segment transition rejected", "state", string(s.state), "event", string(event))
		}
		return
	}
	s.state = next
}
