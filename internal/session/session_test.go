package session

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/hark/internal/capture"
	"github.com/rbright/hark/internal/ipc"
)

// fakeSource feeds frames from a channel and unblocks on Close.
type fakeSource struct {
	frames    chan []byte
	closeOnce sync.Once
	closedCh  chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		frames:   make(chan []byte, 1024),
		closedCh: make(chan struct{}),
	}
}

func (f *fakeSource) ReadFrame() ([]byte, error) {
	select {
	case <-f.closedCh:
		return nil, io.EOF
	case frame, ok := <-f.frames:
		if !ok {
			return nil, io.EOF
		}
		return frame, nil
	}
}

func (f *fakeSource) Close() error {
	f.closeOnce.Do(func() { close(f.closedCh) })
	return nil
}

// recordingIndicator counts indicator invocations.
type recordingIndicator struct {
	listening atomic.Int32
	speech    atomic.Int32
	muted     atomic.Int32
	errors    atomic.Int32
	cues      atomic.Int32
	stops     atomic.Int32
	hides     atomic.Int32
}

func (r *recordingIndicator) ShowListening(context.Context)     { r.listening.Add(1) }
func (r *recordingIndicator) ShowSpeech(context.Context)        { r.speech.Add(1) }
func (r *recordingIndicator) ShowMuted(context.Context)         { r.muted.Add(1) }
func (r *recordingIndicator) ShowError(context.Context, string) { r.errors.Add(1) }
func (r *recordingIndicator) CueUtterance(context.Context)      { r.cues.Add(1) }
func (r *recordingIndicator) CueStop(context.Context)           { r.stops.Add(1) }
func (r *recordingIndicator) Hide(context.Context)              { r.hides.Add(1) }

func testParams() capture.Params {
	p := capture.DefaultParams()
	p.PauseEnd = 40 * time.Millisecond
	p.MinUtterance = 0
	return p
}

func voicedFrame() []byte {
	frame := make([]byte, 640)
	for i := 0; i < len(frame); i += 2 {
		binary.LittleEndian.PutUint16(frame[i:], uint16(int16(4000)))
	}
	return frame
}

func silentFrame() []byte {
	return make([]byte, 640)
}

func listenerAt(t *testing.T) (net.Listener, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hark.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	return l, path
}

func send(t *testing.T, path string, command string) ipc.Response {
	t.Helper()
	resp, err := ipc.Send(context.Background(), path, ipc.Request{Command: command}, 500*time.Millisecond)
	require.NoError(t, err)
	return resp
}

func TestRunServesStatusMuteAndStop(t *testing.T) {
	src := newFakeSource()
	ind := &recordingIndicator{}
	c, err := NewController(nil, testParams(), func() (capture.FrameSource, error) { return src, nil }, "mic-1", nil, ind)
	require.NoError(t, err)

	listener, path := listenerAt(t)
	resultCh := make(chan Result, 1)
	go func() { resultCh <- c.Run(context.Background(), listener) }()

	// Wait for the server to come up.
	var resp ipc.Response
	require.Eventually(t, func() bool {
		r, sendErr := ipc.Send(context.Background(), path, ipc.Request{Command: "status"}, 200*time.Millisecond)
		if sendErr != nil {
			return false
		}
		resp = r
		return true
	}, 2*time.Second, 20*time.Millisecond)
	require.True(t, resp.OK)
	require.Equal(t, "listening", resp.State)

	resp = send(t, path, "mute")
	require.True(t, resp.OK)
	require.True(t, resp.Muted)
	require.Equal(t, "muted", resp.State)

	resp = send(t, path, "unmute")
	require.True(t, resp.OK)
	require.False(t, resp.Muted)
	require.Equal(t, "listening", resp.State)

	resp = send(t, path, "stop")
	require.True(t, resp.OK)

	select {
	case result := <-resultCh:
		require.NoError(t, result.Err)
		require.Equal(t, "mic-1", result.AudioDevice)
		require.False(t, result.FinishedAt.Before(result.StartedAt))
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}

	require.GreaterOrEqual(t, ind.stops.Load(), int32(1))
	require.GreaterOrEqual(t, ind.hides.Load(), int32(1))
	require.GreaterOrEqual(t, ind.muted.Load(), int32(1))
}

func TestRunSavesUtterancesAndCountsThem(t *testing.T) {
	src := newFakeSource()
	ind := &recordingIndicator{}

	var savedMu sync.Mutex
	var saved []capture.Utterance
	saver := SaverFunc(func(u capture.Utterance) (string, error) {
		savedMu.Lock()
		defer savedMu.Unlock()
		saved = append(saved, u)
		return "/tmp/fake.wav", nil
	})

	c, err := NewController(nil, testParams(), func() (capture.FrameSource, error) { return src, nil }, "mic-1", saver, ind)
	require.NoError(t, err)

	listener, path := listenerAt(t)
	resultCh := make(chan Result, 1)
	go func() { resultCh <- c.Run(context.Background(), listener) }()

	for i := 0; i < 10; i++ {
		src.frames <- voicedFrame()
	}

	// Silence frames spaced out so wall-clock passes the pause timeout.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		src.frames <- silentFrame()
		savedMu.Lock()
		n := len(saved)
		savedMu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	savedMu.Lock()
	require.NotEmpty(t, saved, "utterance never saved")
	require.NotEmpty(t, saved[0].WAV)
	savedMu.Unlock()

	send(t, path, "stop")
	result := <-resultCh
	require.NoError(t, result.Err)
	require.GreaterOrEqual(t, result.Utterances, 1)
	require.Greater(t, result.BytesCaptured, int64(0))
	require.GreaterOrEqual(t, ind.cues.Load(), int32(1))
	require.GreaterOrEqual(t, ind.speech.Load(), int32(1))
}

func TestRunFailsFastWhenDeviceUnavailable(t *testing.T) {
	openErr := errors.New("pulse server unreachable")
	ind := &recordingIndicator{}
	c, err := NewController(nil, testParams(), func() (capture.FrameSource, error) { return nil, openErr }, "", nil, ind)
	require.NoError(t, err)

	listener, _ := listenerAt(t)
	defer listener.Close()

	result := c.Run(context.Background(), listener)
	require.ErrorIs(t, result.Err, openErr)
	require.Equal(t, int32(1), ind.errors.Load())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	src := newFakeSource()
	c, err := NewController(nil, testParams(), func() (capture.FrameSource, error) { return src, nil }, "", nil, nil)
	require.NoError(t, err)

	listener, _ := listenerAt(t)
	ctx, cancel := context.WithCancel(context.Background())

	resultCh := make(chan Result, 1)
	go func() { resultCh <- c.Run(ctx, listener) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case result := <-resultCh:
		require.NoError(t, result.Err, "cancellation is a clean shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	c, err := NewController(nil, testParams(), func() (capture.FrameSource, error) { return newFakeSource(), nil }, "", nil, nil)
	require.NoError(t, err)

	resp := c.Handle(context.Background(), ipc.Request{Command: "bogus"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}

func TestNewControllerRejectsInvalidParams(t *testing.T) {
	p := testParams()
	p.SampleRate = 0
	_, err := NewController(nil, p, func() (capture.FrameSource, error) { return newFakeSource(), nil }, "", nil, nil)
	require.Error(t, err)
}
