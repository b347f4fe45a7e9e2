package capture

import (
	"time"

	"github.com/google/uuid"
)

// Utterance is one finalized speech segment, containerized as a WAV
// blob. Produced at most once per segment.
type Utterance struct {
	ID        uuid.UUID
	WAV       []byte
	Duration  time.Duration
	StartedAt time.Time
}

// PCM returns the raw payload without the container header.
func (u Utterance) PCM() []byte {
	if len(u.WAV) <= 44 {
		return nil
	}
	return u.WAV[44:]
}
