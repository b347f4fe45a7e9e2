// Package player plays short PCM and MP3 clips through Pulse. Each
// playback returns an owned Handle so callers can stop or await it
// without sharing global state.
package player

import (
	"errors"
	"log/slog"
	"sync"
)

// Output renders samples until completion or until stop is closed.
type Output interface {
	Play(samples []int16, sampleRate int, stop <-chan struct{}) error
}

// Handle tracks one in-flight playback.
type Handle struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
	err      error
}

// Stop requests an early end of playback. Safe to call repeatedly.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// Done is closed once playback has finished or was stopped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err reports the playback outcome; only valid after Done is closed.
func (h *Handle) Err() error {
	return h.err
}

// Player owns an output backend and spawns one goroutine per clip.
type Player struct {
	out    Output
	logger *slog.Logger
}

// New builds a player backed by the Pulse playback stream.
func New(logger *slog.Logger) *Player {
	return &Player{out: pulseOutput{}, logger: logger}
}

// NewWithOutput injects an output backend.
func NewWithOutput(out Output, logger *slog.Logger) *Player {
	return &Player{out: out, logger: logger}
}

// PlayPCM starts asynchronous playback of mono s16 samples.
func (p *Player) PlayPCM(samples []int16, sampleRate int) (*Handle, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to play")
	}
	if sampleRate <= 0 {
		return nil, errors.New("sample rate must be > 0")
	}

	h := &Handle{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		if err := p.out.Play(samples, sampleRate, h.stopCh); err != nil {
			h.err = err
			if p.logger != nil {
				p.logger.Warn("playback failed", "error", err.Error())
			}
		}
	}()

	return h, nil
}

// PlayMP3 decodes an MP3 clip and plays it.
func (p *Player) PlayMP3(data []byte) (*Handle, error) {
	samples, sampleRate, err := decodeMP3(data)
	if err != nil {
		return nil, err
	}
	return p.PlayPCM(samples, sampleRate)
}
