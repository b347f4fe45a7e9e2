package capture

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/rbright/hark/internal/wav"
)

func TestSinkDropsWhenConsumerStalls(t *testing.T) {
	s := newSink(wav.DefaultFormat(), 4, nil)

	// Header occupies one slot; fill the rest without reading.
	for i := 0; i < 10; i++ {
		s.write([]byte{byte(i), byte(i)})
	}

	require.Greater(t, s.Dropped(), int64(0), "writes past capacity must drop, not block")
	s.Close()

	// The header and the retained chunks are still readable.
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), wav.HeaderSize)
	require.Equal(t, "RIFF", string(data[0:4]))
}

func TestSinkCloseIsIdempotent(t *testing.T) {
	s := newSink(wav.DefaultFormat(), 4, nil)
	s.Close()
	require.NotPanics(t, func() { s.Close() })
}

func TestSinkWriteAfterCloseIsNoop(t *testing.T) {
	s := newSink(wav.DefaultFormat(), 4, nil)
	s.Close()
	require.NotPanics(t, func() { s.write([]byte{1, 2}) })

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Len(t, data, wav.HeaderSize, "only the header was streamed")
}

func TestSinkReadHandlesSmallBuffers(t *testing.T) {
	s := newSink(wav.DefaultFormat(), 4, nil)
	s.write([]byte{9, 9, 9, 9})
	s.Close()

	total := 0
	buf := make([]byte, 7) // smaller than a chunk, forces leftover path
	for {
		n, err := s.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, wav.HeaderSize+4, total)
}

func TestSinkWriteCopiesFrame(t *testing.T) {
	s := newSink(wav.DefaultFormat(), 4, nil)
	frame := []byte{1, 2, 3, 4}
	s.write(frame)
	frame[0] = 0xFF // caller reuses the frame buffer
	s.Close()

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	require.Equal(t, byte(1), data[wav.HeaderSize])
}
