// Package session coordinates one listener lifecycle: the capture
// engine, the control socket, and utterance delivery.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/hark/internal/capture"
	"github.com/rbright/hark/internal/ipc"
)

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	AudioDevice   string
	Utterances    int
	BytesCaptured int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Err           error
}

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowListening(context.Context)
	ShowSpeech(context.Context)
	ShowMuted(context.Context)
	ShowError(context.Context, string)
	CueUtterance(context.Context)
	CueStop(context.Context)
	Hide(context.Context)
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowListening(context.Context)     {}
func (noopIndicator) ShowSpeech(context.Context)        {}
func (noopIndicator) ShowMuted(context.Context)         {}
func (noopIndicator) ShowError(context.Context, string) {}
func (noopIndicator) CueUtterance(context.Context)      {}
func (noopIndicator) CueStop(context.Context)           {}
func (noopIndicator) Hide(context.Context)              {}

// Saver persists one finished utterance.
type Saver interface {
	Save(capture.Utterance) (string, error)
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(capture.Utterance) (string, error)

func (f SaverFunc) Save(u capture.Utterance) (string, error) {
	return f(u)
}

// Controller owns the engine for one listener run and serves its
// control commands.
type Controller struct {
	logger    *slog.Logger
	engine    *capture.Engine
	indicator Indicator
	device    string

	utterances atomic.Int32

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewController wires segmentation callbacks to the indicator and saver
// and builds the capture engine around them.
func NewController(
	logger *slog.Logger,
	params capture.Params,
	open capture.OpenFunc,
	device string,
	saver Saver,
	ind Indicator,
) (*Controller, error) {
	if ind == nil {
		ind = noopIndicator{}
	}

	c := &Controller{
		logger:    logger,
		indicator: ind,
		device:    device,
		stopCh:    make(chan struct{}),
	}

	cb := capture.Callbacks{
		OnStreamStart: func(*capture.Sink) {
			c.indicator.ShowSpeech(context.Background())
		},
		OnStreamEnd: func() {
			c.indicator.ShowListening(context.Background())
		},
		OnMuteChanged: func(muted bool) {
			if muted {
				c.indicator.ShowMuted(context.Background())
			} else {
				c.indicator.ShowListening(context.Background())
			}
		},
		OnUtterance: func(u capture.Utterance) {
			c.utterances.Add(1)
			c.indicator.CueUtterance(context.Background())
			if saver == nil {
				return
			}
			path, err := saver.Save(u)
			if err != nil {
				if logger != nil {
					logger.Warn("utterance save failed", "error", err.Error())
				}
				return
			}
			if logger != nil {
				logger.Info("utterance captured",
					"id", u.ID.String(),
					"path", path,
					"duration_ms", u.Duration.Milliseconds(),
				)
			}
		},
	}

	engine, err := capture.NewEngine(params, open, cb, logger)
	if err != nil {
		return nil, fmt.Errorf("build capture engine: %w", err)
	}
	c.engine = engine
	return c, nil
}

// Run executes one listener lifecycle until stop, context cancel, or failure.
func (c *Controller) Run(ctx context.Context, listener net.Listener) Result {
	result := Result{AudioDevice: c.device, StartedAt: time.Now()}

	if err := c.engine.Start(); err != nil {
		c.indicator.ShowError(ctx, "Unable to open audio device")
		result.Err = err
		result.FinishedAt = time.Now()
		return result
	}

	c.indicator.ShowListening(ctx)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
		defer cancel()
		c.indicator.Hide(cleanupCtx)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return ipc.Serve(gctx, listener, c)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-c.stopCh:
			cancel()
		}
		return nil
	})

	err := g.Wait()
	c.engine.Stop()
	c.indicator.CueStop(context.Background())

	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	result.Err = err
	result.Utterances = int(c.utterances.Load())
	result.BytesCaptured = c.engine.BytesCaptured()
	result.FinishedAt = time.Now()

	if c.logger != nil {
		c.logger.Info("listener finished",
			"utterances", result.Utterances,
			"bytes_captured", result.BytesCaptured,
			"device", result.AudioDevice,
		)
	}
	return result
}

// Handle serves IPC commands for the active listener.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return c.statusResponse("status")
	case "mute":
		c.engine.Mute()
		return c.statusResponse("muted")
	case "unmute":
		c.engine.Unmute()
		return c.statusResponse("unmuted")
	case "stop":
		c.requestStop()
		return c.statusResponse("stop requested")
	default:
		return ipc.Response{
			OK:    false,
			State: c.engine.State(),
			Error: fmt.Sprintf("unknown command: %s", req.Command),
		}
	}
}

// requestStop ends the Run loop; safe to call repeatedly.
func (c *Controller) requestStop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Controller) statusResponse(message string) ipc.Response {
	return ipc.Response{
		OK:         true,
		State:      c.engine.State(),
		Muted:      c.engine.Muted(),
		Utterances: int(c.utterances.Load()),
		Bytes:      c.engine.BytesCaptured(),
		Message:    message,
	}
}
