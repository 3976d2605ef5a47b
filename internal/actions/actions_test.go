package actions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/dock-sensor/internal/gpio"
)

// virtualClock advances only when the sequencer sleeps.
type virtualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

func newHarness() (*Sequencer, *gpio.FakeOutputs, *virtualClock) {
	clk := &virtualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	out := gpio.NewFakeOutputs()
	out.Now = clk.Now
	return NewSequencer(out, clk.Sleep), out, clk
}

// offsets returns each write's time relative to the first write.
func offsets(ws []gpio.Write) []time.Duration {
	out := make([]time.Duration, len(ws))
	for i, w := range ws {
		out[i] = w.At.Sub(ws[0].At)
	}
	return out
}

func TestGoToChargerPulse(t *testing.T) {
	seq, out, _ := newHarness()

	require.NoError(t, seq.Run(context.Background(), ActionGoToCharger))

	ws := out.Writes()
	require.Len(t, ws, 2)
	assert.Equal(t, gpio.LineDrive, ws[0].Line)
	assert.Equal(t, 0, ws[0].Value)
	assert.Equal(t, gpio.LineDrive, ws[1].Line)
	assert.Equal(t, 1, ws[1].Value)
	assert.Equal(t, []time.Duration{0, 250 * time.Millisecond}, offsets(ws))
	assert.Equal(t, 1, out.Level(gpio.LineDrive))
}

func TestRestartTimingContract(t *testing.T) {
	seq, out, _ := newHarness()

	require.NoError(t, seq.Run(context.Background(), ActionRestart))

	ws := out.Writes()
	require.Len(t, ws, 6)

	wantLines := []gpio.Line{gpio.LineRestart, gpio.LineRestart, gpio.LineRestart, gpio.LineRestart, gpio.LineDrive, gpio.LineDrive}
	wantValues := []int{1, 0, 1, 0, 0, 1}
	for i := range ws {
		assert.Equal(t, wantLines[i], ws[i].Line, "write %d line", i)
		assert.Equal(t, wantValues[i], ws[i].Value, "write %d value", i)
	}

	assert.Equal(t, []time.Duration{
		0,
		4 * time.Second,
		9 * time.Second,
		11 * time.Second,
		26 * time.Second,
		26*time.Second + 250*time.Millisecond,
	}, offsets(ws))

	assert.Equal(t, 0, out.Level(gpio.LineRestart))
	assert.Equal(t, 1, out.Level(gpio.LineDrive))
}

func TestUnknownAction(t *testing.T) {
	seq, out, _ := newHarness()

	err := seq.Run(context.Background(), Action("self_destruct"))
	require.ErrorIs(t, err, ErrUnknownAction)
	assert.Empty(t, out.Writes())

	_, err = seq.Start(context.Background(), Action(""))
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestStartRejectsConcurrentSequence(t *testing.T) {
	out := gpio.NewFakeOutputs()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	block := func(ctx context.Context, d time.Duration) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil
	}
	seq := NewSequencer(out, block)

	done, err := seq.Start(context.Background(), ActionRestart)
	require.NoError(t, err)
	<-entered

	_, err = seq.Start(context.Background(), ActionGoToCharger)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, seq.Run(context.Background(), ActionGoToCharger), ErrBusy)

	close(release)
	require.NoError(t, <-done)

	// Lines are free again.
	done, err = seq.Start(context.Background(), ActionGoToCharger)
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestCancelRestoresIdle(t *testing.T) {
	out := gpio.NewFakeOutputs()
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	sleep := func(ctx context.Context, d time.Duration) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return ctx.Err()
	}
	seq := NewSequencer(out, sleep)

	err := seq.Run(ctx, ActionRestart)
	require.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 0, out.Level(gpio.LineRestart))
	assert.Equal(t, 1, out.Level(gpio.LineDrive))
}

func TestWaitCoversIdleRestore(t *testing.T) {
	out := gpio.NewFakeOutputs()
	ctx, cancel := context.WithCancel(context.Background())
	entered := make(chan struct{})
	block := func(ctx context.Context, d time.Duration) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}
	seq := NewSequencer(out, block)

	done, err := seq.Start(ctx, ActionGoToCharger)
	require.NoError(t, err)
	<-entered
	require.Equal(t, 0, out.Level(gpio.LineDrive))

	cancel()
	seq.Wait()

	// The restore has landed by the time Wait returns.
	assert.Equal(t, 1, out.Level(gpio.LineDrive))
	assert.Equal(t, 0, out.Level(gpio.LineRestart))
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWaitWithoutSequence(t *testing.T) {
	seq := NewSequencer(gpio.NewFakeOutputs(), nil)
	seq.Wait()
}

func TestSetErrorAbortsSequence(t *testing.T) {
	seq, out, _ := newHarness()
	out.SetError = errors.New("line busy")

	err := seq.Run(context.Background(), ActionGoToCharger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go_to_charger step 0")
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}

func TestRestartEndsWithDrivePulse(t *testing.T) {
	steps := RestartSteps()
	tail := steps[len(steps)-2:]
	assert.Equal(t, GoToChargerSteps(), tail)
}
