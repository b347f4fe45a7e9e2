package capture

import (
	"fmt"
	"log/slog"
)

// Callbacks is the event surface invoked from the capture goroutine.
//
// Callbacks run synchronously on the capture loop except where noted:
// implementations must not block, or audio capture stalls. Nil members
// are skipped. Panics are recovered and logged so one bad consumer
// cannot halt ongoing capture.
type Callbacks struct {
	// OnSpeech fires when a silence-to-speech transition is detected.
	OnSpeech func()
	// OnSilence fires when capture settles into silence from idle.
	OnSilence func()
	// OnMuteChanged fires on every mute/unmute flip. Unlike the other
	// callbacks it runs on the goroutine calling Mute or Unmute,
	// typically an IPC handler, before that call returns.
	OnMuteChanged func(muted bool)
	// OnStreamStart hands the readable end of the live sink to the
	// consumer; the container header is already written.
	OnStreamStart func(*Sink)
	// OnStreamBytes mirrors live payload writes, for diagnostics.
	OnStreamBytes func([]byte)
	// OnStreamEnd fires when the live sink for the current utterance is
	// closed, whether the segment ended naturally or was aborted.
	OnStreamEnd func()
	// OnUtterance delivers a finalized, containerized utterance.
	OnUtterance func(Utterance)
}

// emit runs one callback under panic recovery.
func emit(logger *slog.Logger, name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Error("capture callback panicked", "callback", name, "panic", fmt.Sprint(r))
		}
	}()
	fn()
}
