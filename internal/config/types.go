// Package config resolves, parses, validates, and defaults hark configuration.
package config

import (
	"time"

	"github.com/rbright/hark/internal/capture"
)

// Config is the fully materialized runtime configuration used by hark.
type Config struct {
	Audio     AudioConfig
	Capture   CaptureConfig
	Output    OutputConfig
	Indicator IndicatorConfig
	Debug     DebugConfig
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// CaptureConfig controls voice detection and segmentation thresholds.
type CaptureConfig struct {
	Threshold      int
	PauseMS        int
	MinUtteranceMS int
	MaxUtteranceMS int
	SampleRate     int
}

// OutputConfig controls where finished utterances are written.
type OutputConfig struct {
	SaveUtterances bool
	Directory      string
}

// IndicatorConfig controls desktop notification and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	DesktopAppName string
	SoundEnable    bool
	ErrorTimeoutMS int
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}

// Params maps capture thresholds onto engine parameters.
func (c CaptureConfig) Params() capture.Params {
	p := capture.DefaultParams()
	p.SampleRate = c.SampleRate
	p.AmplitudeThreshold = c.Threshold
	p.PauseEnd = time.Duration(c.PauseMS) * time.Millisecond
	p.MinUtterance = time.Duration(c.MinUtteranceMS) * time.Millisecond
	p.MaxUtterance = time.Duration(c.MaxUtteranceMS) * time.Millisecond
	return p
}
