package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSONCAppliesValuesOverDefaults(t *testing.T) {
	content := `{
	// capture device preferences
	"audio": {
		"input": "elgato",
		"fallback": "sony",
	},
	"capture": {
		"threshold": 300,
		"pause_ms": 700,
		"min_utterance_ms": 1000,
		"max_utterance_ms": 12000, // trailing comma above and comment here
	},
	"output": {
		"save_utterances": true,
		"directory": "/tmp/hark-utterances",
	},
	"indicator": {
		"enable": false,
		"sound_enable": false,
	},
	"debug": { "audio_dump": true },
}`

	cfg, warnings, err := Parse(content, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, "elgato", cfg.Audio.Input)
	require.Equal(t, "sony", cfg.Audio.Fallback)
	require.Equal(t, 300, cfg.Capture.Threshold)
	require.Equal(t, 700, cfg.Capture.PauseMS)
	require.Equal(t, 1000, cfg.Capture.MinUtteranceMS)
	require.Equal(t, 12000, cfg.Capture.MaxUtteranceMS)
	require.Equal(t, 16000, cfg.Capture.SampleRate, "unset keys keep defaults")
	require.True(t, cfg.Output.SaveUtterances)
	require.Equal(t, "/tmp/hark-utterances", cfg.Output.Directory)
	require.False(t, cfg.Indicator.Enable)
	require.False(t, cfg.Indicator.SoundEnable)
	require.True(t, cfg.Debug.EnableAudioDump)
}

func TestParseJSONCPartialObjectKeepsDefaults(t *testing.T) {
	cfg, _, err := Parse(`{"capture": {"threshold": 180}}`, Default())
	require.NoError(t, err)
	require.Equal(t, 180, cfg.Capture.Threshold)
	require.Equal(t, 900, cfg.Capture.PauseMS)
	require.Equal(t, "default", cfg.Audio.Input)
}

func TestParseJSONCBlockComments(t *testing.T) {
	content := `{
	/* tuning notes:
	   lower threshold for quiet rooms */
	"capture": { "threshold": 150 }
}`
	cfg, _, err := Parse(content, Default())
	require.NoError(t, err)
	require.Equal(t, 150, cfg.Capture.Threshold)
}

func TestParseJSONCRejectsUnknownKeys(t *testing.T) {
	_, _, err := Parse(`{"captur": {"threshold": 100}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field")
}

func TestParseJSONCSyntaxErrorReportsLineAndColumn(t *testing.T) {
	content := "{\n\t\"audio\": {\n\t\t\"input\": default\n\t}\n}"
	_, _, err := Parse(content, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 3")
}

func TestParseJSONCRejectsMultipleValues(t *testing.T) {
	_, _, err := Parse(`{"audio": {}} {"audio": {}}`, Default())
	require.Error(t, err)
}

func TestParseJSONCRejectsUnterminatedBlockComment(t *testing.T) {
	_, _, err := Parse(`{"audio": {} /* never closed`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated")
}

func TestParseJSONCTypeMismatch(t *testing.T) {
	_, _, err := Parse(`{"capture": {"threshold": "loud"}}`, Default())
	require.Error(t, err)
}

func TestStripJSONCCommentsPreservesStrings(t *testing.T) {
	out, err := stripJSONCComments(`{"k": "http://example.com // not a comment"}`)
	require.NoError(t, err)
	require.Contains(t, out, "http://example.com // not a comment")
}

func TestStripTrailingCommasPreservesStrings(t *testing.T) {
	out := stripJSONCTrailingCommas(`{"k": "a,}", "list": [1, 2,]}`)
	require.Contains(t, out, `"a,}"`)
	require.Contains(t, out, "[1, 2]")
}
