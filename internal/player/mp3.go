package player

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tosone/minimp3"
)

// decodeMP3 decodes an MP3 clip into mono s16 samples, averaging
// stereo channels when needed.
func decodeMP3(data []byte) ([]int16, int, error) {
	if len(data) == 0 {
		return nil, 0, errors.New("empty mp3 data")
	}

	dec, pcm, err := minimp3.DecodeFull(data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}
	if len(pcm) < 2 || dec.SampleRate <= 0 || dec.Channels <= 0 {
		return nil, 0, errors.New("mp3 contained no audio")
	}

	samples := make([]int16, 0, len(pcm)/2/dec.Channels)
	stride := 2 * dec.Channels
	for i := 0; i+stride <= len(pcm); i += stride {
		if dec.Channels == 1 {
			samples = append(samples, int16(binary.LittleEndian.Uint16(pcm[i:])))
			continue
		}
		sum := 0
		for ch := 0; ch < dec.Channels; ch++ {
			sum += int(int16(binary.LittleEndian.Uint16(pcm[i+2*ch:])))
		}
		samples = append(samples, int16(sum/dec.Channels))
	}

	return samples, dec.SampleRate, nil
}
