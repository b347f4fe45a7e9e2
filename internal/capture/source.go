package capture

// FrameSource supplies fixed-format PCM frames with blocking read
// semantics. The capture loop is the only reader.
type FrameSource interface {
	// ReadFrame blocks until one frame is available, returning io.EOF
	// once the source is closed and drained. The returned slice is
	// owned by the caller until the next ReadFrame call.
	ReadFrame() ([]byte, error)

	// Close releases the underlying device and unblocks any pending
	// ReadFrame. It is safe to call more than once.
	Close() error
}
