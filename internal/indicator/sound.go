package indicator

import (
	"errors"
	"time"

	"github.com/rbright/hark/internal/player"
)

type cueKind int

const (
	cueListen cueKind = iota + 1
	cueUtterance
	cueMute
	cueStop
)

const cueSampleRate = 16000

var (
	listenCuePCM = player.Synthesize([]player.Tone{
		{FrequencyHz: 880, Duration: 70 * time.Millisecond, Volume: 0.18},
		{FrequencyHz: 1175, Duration: 70 * time.Millisecond, Volume: 0.18},
	}, cueSampleRate)
	utteranceCuePCM = player.Synthesize([]player.Tone{
		{FrequencyHz: 740, Duration: 65 * time.Millisecond, Volume: 0.18},
		{FrequencyHz: 988, Duration: 90 * time.Millisecond, Volume: 0.18},
	}, cueSampleRate)
	muteCuePCM = player.Synthesize([]player.Tone{
		{FrequencyHz: 480, Duration: 75 * time.Millisecond, Volume: 0.18},
		{FrequencyHz: 360, Duration: 90 * time.Millisecond, Volume: 0.18},
	}, cueSampleRate)
	stopCuePCM = player.Synthesize([]player.Tone{
		{FrequencyHz: 620, Duration: 120 * time.Millisecond, Volume: 0.18},
	}, cueSampleRate)
)

// emitCue plays one cue to completion through the owned player.
func (d *DesktopNotify) emitCue(kind cueKind) error {
	samples := cueSamples(kind)
	if len(samples) == 0 {
		return nil
	}
	if d.player == nil {
		return errors.New("indicator player not configured")
	}

	handle, err := d.player.PlayPCM(samples, cueSampleRate)
	if err != nil {
		return err
	}

	select {
	case <-handle.Done():
		return handle.Err()
	case <-time.After(4 * time.Second):
		handle.Stop()
		return errors.New("cue playback timed out")
	}
}

func cueSamples(kind cueKind) []int16 {
	switch kind {
	case cueListen:
		return listenCuePCM
	case cueUtterance:
		return utteranceCuePCM
	case cueMute:
		return muteCuePCM
	case cueStop:
		return stopCuePCM
	default:
		return nil
	}
}
