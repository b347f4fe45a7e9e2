package player

import (
	"math"
	"time"
)

// Tone is one synthesized sine segment of a cue.
type Tone struct {
	FrequencyHz float64
	Duration    time.Duration
	Volume      float64
}

const toneGap = 22 * time.Millisecond

// Synthesize renders a tone sequence as mono s16 samples with short
// silent gaps between segments and 5ms attack/release ramps.
func Synthesize(parts []Tone, sampleRate int) []int16 {
	if len(parts) == 0 || sampleRate <= 0 {
		return nil
	}
	gapSamples := samplesForDuration(toneGap, sampleRate)
	total := 0
	for i, part := range parts {
		total += samplesForDuration(part.Duration, sampleRate)
		if i < len(parts)-1 {
			total += gapSamples
		}
	}

	pcm := make([]int16, 0, total)
	for i, part := range parts {
		pcm = append(pcm, synthesizeTone(part, sampleRate)...)
		if i < len(parts)-1 && gapSamples > 0 {
			pcm = append(pcm, make([]int16, gapSamples)...)
		}
	}

	return pcm
}

func synthesizeTone(spec Tone, sampleRate int) []int16 {
	n := samplesForDuration(spec.Duration, sampleRate)
	if n <= 0 || spec.FrequencyHz <= 0 || spec.Volume <= 0 {
		return nil
	}

	attackRelease := n / 10
	maxRamp := sampleRate / 200 // 5ms
	if attackRelease > maxRamp {
		attackRelease = maxRamp
	}
	if attackRelease < 1 {
		attackRelease = 1
	}

	pcm := make([]int16, n)
	for i := 0; i < n; i++ {
		envelope := 1.0
		if i < attackRelease {
			envelope = float64(i) / float64(attackRelease)
		}
		releaseIndex := n - i - 1
		if releaseIndex < attackRelease {
			release := float64(releaseIndex) / float64(attackRelease)
			if release < envelope {
				envelope = release
			}
		}
		t := float64(i) / float64(sampleRate)
		sample := math.Sin(2 * math.Pi * spec.FrequencyHz * t)
		pcm[i] = int16(math.Round(sample * spec.Volume * envelope * 32767))
	}

	return pcm
}

func samplesForDuration(d time.Duration, sampleRate int) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * float64(sampleRate)))
}
