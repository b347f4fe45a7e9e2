// Package indicator handles desktop state notifications and audio cue playback.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/hark/internal/config"
	"github.com/rbright/hark/internal/player"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	ShowListening(context.Context)
	ShowSpeech(context.Context)
	ShowMuted(context.Context)
	ShowError(context.Context, string)
	CueUtterance(context.Context)
	CueStop(context.Context)
	Hide(context.Context)
}

// DesktopNotify routes state changes to freedesktop notifications and
// synthesized audio cues.
type DesktopNotify struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	player   *player.Player
	messages messages

	mu             sync.Mutex
	notificationID uint32
	notifyMu       sync.Mutex
	soundMu        sync.Mutex
}

// NewDesktopNotify creates an indicator controller from config.
func NewDesktopNotify(cfg config.IndicatorConfig, logger *slog.Logger) *DesktopNotify {
	return &DesktopNotify{
		cfg:      cfg,
		logger:   logger,
		player:   player.New(logger),
		messages: indicatorMessagesFromEnv(),
	}
}

// ShowListening signals capture start and emits the listen cue.
func (d *DesktopNotify) ShowListening(context.Context) {
	d.playCue(cueListen)
	d.show(func(ctx context.Context) error {
		return d.notify(ctx, 300000, d.messages.listening)
	})
}

// ShowSpeech signals that a speech segment is being captured.
func (d *DesktopNotify) ShowSpeech(context.Context) {
	d.show(func(ctx context.Context) error {
		return d.notify(ctx, 300000, d.messages.speech)
	})
}

// ShowMuted signals the muted state and emits the mute cue.
func (d *DesktopNotify) ShowMuted(context.Context) {
	d.playCue(cueMute)
	d.show(func(ctx context.Context) error {
		return d.notify(ctx, 300000, d.messages.muted)
	})
}

// ShowError displays an error-state message with a bounded timeout.
func (d *DesktopNotify) ShowError(ctx context.Context, text string) {
	if !d.cfg.Enable {
		return
	}
	if text == "" {
		text = d.messages.errorText
	}
	timeout := d.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = 1200
	}
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()
	d.run(ctx, func(ctx context.Context) error {
		return d.notify(ctx, timeout, text)
	})
}

// CueUtterance emits the utterance-captured cue.
func (d *DesktopNotify) CueUtterance(context.Context) {
	d.playCue(cueUtterance)
}

// CueStop emits the listener-stopped cue.
func (d *DesktopNotify) CueStop(context.Context) {
	d.playCue(cueStop)
}

// Hide dismisses the active notification. It waits for any queued
// state update first so a late show cannot resurrect the bubble.
func (d *DesktopNotify) Hide(ctx context.Context) {
	if !d.cfg.Enable {
		return
	}
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()
	d.run(ctx, d.dismiss)
}

// notify sends a replaceable desktop notification and stores its ID.
func (d *DesktopNotify) notify(ctx context.Context, timeoutMS int, text string) error {
	d.mu.Lock()
	replaceID := d.notificationID
	d.mu.Unlock()

	appName := strings.TrimSpace(d.cfg.DesktopAppName)
	if appName == "" {
		appName = "hark-indicator"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.notificationID = id
	d.mu.Unlock()
	return nil
}

// dismiss closes the current desktop notification ID when present.
func (d *DesktopNotify) dismiss(ctx context.Context) error {
	d.mu.Lock()
	id := d.notificationID
	d.notificationID = 0
	d.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout.
func (d *DesktopNotify) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		d.log("indicator dispatch failed", err)
	}
}

// show dispatches a state notification without blocking the caller.
// State changes arrive from the capture loop between frame reads, so
// the busctl roundtrip must never run on the caller's goroutine;
// notifyMu keeps updates ordered against each other and against Hide.
func (d *DesktopNotify) show(fn func(context.Context) error) {
	if !d.cfg.Enable {
		return
	}
	go func() {
		d.notifyMu.Lock()
		defer d.notifyMu.Unlock()
		d.run(context.Background(), fn)
	}()
}

// playCue serializes cue playback and emits audio asynchronously.
func (d *DesktopNotify) playCue(kind cueKind) {
	if !d.cfg.SoundEnable {
		return
	}
	go func() {
		d.soundMu.Lock()
		defer d.soundMu.Unlock()
		if err := d.emitCue(kind); err != nil {
			d.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (d *DesktopNotify) log(message string, err error) {
	if d.logger == nil || err == nil {
		return
	}
	d.logger.Debug(message, "error", err.Error())
}
