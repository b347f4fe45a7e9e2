// Package wav encodes raw PCM into RIFF/WAVE containers.
package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// HeaderSize is the fixed canonical PCM header length.
const HeaderSize = 44

// streamSizePlaceholder fills the RIFF and data size fields for live
// streams whose total length is unknown when the header is written.
const streamSizePlaceholder = 0xFFFFFFFF

// Format describes the fixed PCM layout shared by all containers
// produced from one capture session.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is 16 kHz mono s16, the capture pipeline's native layout.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}

// Validate rejects layouts the header cannot represent.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channel count must be > 0, got %d", f.Channels)
	}
	if f.BitsPerSample != 8 && f.BitsPerSample != 16 && f.BitsPerSample != 24 && f.BitsPerSample != 32 {
		return fmt.Errorf("unsupported bits per sample %d", f.BitsPerSample)
	}
	return nil
}

// BytesPerSecond returns the PCM byte rate for this format.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * (f.BitsPerSample / 8)
}

// Duration converts a PCM payload length to wall-clock audio time.
func (f Format) Duration(n int) time.Duration {
	rate := f.BytesPerSecond()
	if rate <= 0 || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(rate)
}

// Header builds the 44-byte little-endian PCM header for a payload of
// dataLen bytes.
func (f Format) Header(dataLen int) []byte {
	byteRate := f.BytesPerSecond()
	blockAlign := f.Channels * (f.BitsPerSample / 8)

	chunkSize := uint32(36 + dataLen)
	subChunk2Size := uint32(dataLen)
	if dataLen < 0 {
		chunkSize = streamSizePlaceholder
		subChunk2Size = streamSizePlaceholder
	}

	header := make([]byte, HeaderSize)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], chunkSize)
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(f.BitsPerSample))
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], subChunk2Size)

	return header
}

// StreamHeader builds a header with placeholder size fields for live
// streams where total length is not known in advance.
func (f Format) StreamHeader() []byte {
	return f.Header(-1)
}

// Encode wraps a finished PCM payload into a self-describing container.
func (f Format) Encode(pcm []byte) []byte {
	out := make([]byte, 0, HeaderSize+len(pcm))
	out = append(out, f.Header(len(pcm))...)
	return append(out, pcm...)
}

// Write streams header plus payload to w.
func (f Format) Write(w io.Writer, pcm []byte) error {
	if _, err := w.Write(f.Header(len(pcm))); err != nil {
		return err
	}
	_, err := w.Write(pcm)
	return err
}
