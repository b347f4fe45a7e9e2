package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Capture: CaptureConfig{
			Threshold:      220,
			PauseMS:        900,
			MinUtteranceMS: 1200,
			MaxUtteranceMS: 15000,
			SampleRate:     16000,
		},
		Output: OutputConfig{
			SaveUtterances: false,
			Directory:      "",
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			DesktopAppName: "hark-indicator",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
		Debug: DebugConfig{},
	}
}
