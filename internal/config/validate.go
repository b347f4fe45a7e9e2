package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Audio.Input) == "" {
		return nil, fmt.Errorf("audio.input must not be empty")
	}
	if cfg.Capture.Threshold <= 0 {
		return nil, fmt.Errorf("capture.threshold must be > 0")
	}
	if cfg.Capture.PauseMS <= 0 {
		return nil, fmt.Errorf("capture.pause_ms must be > 0")
	}
	if cfg.Capture.MinUtteranceMS < 0 {
		return nil, fmt.Errorf("capture.min_utterance_ms must be >= 0")
	}
	if cfg.Capture.MaxUtteranceMS <= 0 {
		return nil, fmt.Errorf("capture.max_utterance_ms must be > 0")
	}
	if cfg.Capture.MaxUtteranceMS < cfg.Capture.MinUtteranceMS {
		return nil, fmt.Errorf("capture.max_utterance_ms must be >= capture.min_utterance_ms")
	}
	if cfg.Capture.SampleRate <= 0 {
		return nil, fmt.Errorf("capture.sample_rate must be > 0")
	}
	if cfg.Output.SaveUtterances && strings.Contains(cfg.Output.Directory, "\x00") {
		return nil, fmt.Errorf("output.directory contains invalid characters")
	}
	if cfg.Indicator.Enable && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.enable=true")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	if cfg.Capture.Threshold > 32768 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("capture.threshold %d exceeds the 16-bit amplitude range; no frame will ever classify as voiced", cfg.Capture.Threshold)})
	}

	return warnings, nil
}
