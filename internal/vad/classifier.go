// Package vad implements amplitude-threshold voice activity detection.
package vad

import "encoding/binary"

// DefaultThreshold is the mean absolute sample amplitude above which a
// frame counts as voiced, tuned for 16 kHz mono s16 microphone input.
const DefaultThreshold = 220

// Classifier maps PCM16 frames to a voiced/silent decision. It is
// stateless; mute handling lives with the caller.
type Classifier struct {
	Threshold int
}

// NewClassifier returns a classifier with the given threshold, falling
// back to DefaultThreshold for non-positive values.
func NewClassifier(threshold int) Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Classifier{Threshold: threshold}
}

// Voiced reports whether the frame's mean absolute amplitude reaches
// the threshold. Frames without a complete sample are silent.
func (c Classifier) Voiced(frame []byte) bool {
	return MeanAmplitude(frame) >= c.Threshold
}

// MeanAmplitude computes the mean absolute amplitude over all complete
// little-endian int16 samples in frame. A trailing odd byte is ignored.
func MeanAmplitude(frame []byte) int {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}

	var total int64
	for i := 0; i < samples*2; i += 2 {
		s := int16(binary.LittleEndian.Uint16(frame[i : i+2]))
		if s < 0 {
			// -32768 negates to itself; saturate instead.
			if s == -32768 {
				total += 32768
				continue
			}
			s = -s
		}
		total += int64(s)
	}

	return int(total / int64(samples))
}
