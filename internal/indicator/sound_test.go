package indicator

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rbright/hark/internal/config"
	"github.com/rbright/hark/internal/player"
)

// countingOutput records playback invocations.
type countingOutput struct {
	mu    sync.Mutex
	plays int
}

func (c *countingOutput) Play(samples []int16, sampleRate int, stop <-chan struct{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	return nil
}

func (c *countingOutput) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays
}

func TestCueSamplesPresent(t *testing.T) {
	require.NotEmpty(t, cueSamples(cueListen))
	require.NotEmpty(t, cueSamples(cueUtterance))
	require.NotEmpty(t, cueSamples(cueMute))
	require.NotEmpty(t, cueSamples(cueStop))
	require.Empty(t, cueSamples(cueKind(99)))
}

func TestEmitCuePlaysThroughPlayer(t *testing.T) {
	out := &countingOutput{}
	cfg := config.Default().Indicator

	notify := NewDesktopNotify(cfg, nil)
	notify.player = player.NewWithOutput(out, nil)

	require.NoError(t, notify.emitCue(cueListen))
	require.Equal(t, 1, out.count())
}

func TestPlayCueDisabledSkipsPlayback(t *testing.T) {
	out := &countingOutput{}
	cfg := config.Default().Indicator
	cfg.SoundEnable = false

	notify := NewDesktopNotify(cfg, nil)
	notify.player = player.NewWithOutput(out, nil)

	notify.playCue(cueListen)
	time.Sleep(50 * time.Millisecond)
	require.Zero(t, out.count())
}

func TestEmitCueUnknownKindIsNoop(t *testing.T) {
	notify := NewDesktopNotify(config.Default().Indicator, nil)
	notify.player = nil
	require.NoError(t, notify.emitCue(cueKind(99)))
}
