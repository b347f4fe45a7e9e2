package capture

import (
	"fmt"
	"time"

	"github.com/rbright/hark/internal/wav"
)

// Params are the construction-time capture and segmentation settings.
type Params struct {
	SampleRate    int
	Channels      int
	BitsPerSample int

	// AmplitudeThreshold is the mean absolute sample amplitude at or
	// above which a frame counts as voiced.
	AmplitudeThreshold int

	// PauseEnd is how long silence must persist inside a speech segment
	// before the utterance is considered finished.
	PauseEnd time.Duration

	// MinUtterance is the shortest speech-only duration that is emitted
	// as a finished utterance; shorter segments are discarded.
	MinUtterance time.Duration

	// MaxUtterance force-ends a segment regardless of activity. Capped
	// segments are always emitted.
	MaxUtterance time.Duration

	// SinkDepth is the live sink's chunk buffer capacity. Writes beyond
	// it are dropped rather than blocking the capture loop.
	SinkDepth int
}

// DefaultParams returns the tuned defaults for 16 kHz mono dictation.
func DefaultParams() Params {
	return Params{
		SampleRate:         16000,
		Channels:           1,
		BitsPerSample:      16,
		AmplitudeThreshold: 220,
		PauseEnd:           900 * time.Millisecond,
		MinUtterance:       1200 * time.Millisecond,
		MaxUtterance:       15 * time.Second,
		SinkDepth:          256,
	}
}

// Validate enforces parameter invariants before an engine is built.
func (p Params) Validate() error {
	if err := p.Format().Validate(); err != nil {
		return err
	}
	if p.AmplitudeThreshold <= 0 {
		return fmt.Errorf("amplitude threshold must be > 0, got %d", p.AmplitudeThreshold)
	}
	if p.PauseEnd <= 0 {
		return fmt.Errorf("pause duration must be > 0, got %s", p.PauseEnd)
	}
	if p.MinUtterance < 0 {
		return fmt.Errorf("min utterance duration must be >= 0, got %s", p.MinUtterance)
	}
	if p.MaxUtterance <= 0 {
		return fmt.Errorf("max utterance duration must be > 0, got %s", p.MaxUtterance)
	}
	if p.MaxUtterance < p.MinUtterance {
		return fmt.Errorf("max utterance %s is shorter than min utterance %s", p.MaxUtterance, p.MinUtterance)
	}
	if p.SinkDepth <= 0 {
		return fmt.Errorf("sink depth must be > 0, got %d", p.SinkDepth)
	}
	return nil
}

// Format returns the container layout shared by live streams and
// finalized utterances.
func (p Params) Format() wav.Format {
	return wav.Format{
		SampleRate:    p.SampleRate,
		Channels:      p.Channels,
		BitsPerSample: p.BitsPerSample,
	}
}
