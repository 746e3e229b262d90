package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	alarm "github.com/AlbertDoesNothing/Myriad/internal/domain/alarm"
)

// nullPin discards writes.
type nullPin struct{}

func (nullPin) Set(bool) {}

// nullSounder discards tones.
type nullSounder struct{}

func (nullSounder) Tone(int) {}

func (nullSounder) Silence() {}

// scriptedPoller yields its bytes one Poll at a time.
type scriptedPoller struct {
	bytes []byte
}

func (p *scriptedPoller) Poll() (byte, bool) {
	if len(p.bytes) == 0 {
		return 0, false
	}

	b := p.bytes[0]
	p.bytes = p.bytes[1:]

	return b, true
}

func newTestService(poll time.Duration) *service {
	machine := alarm.NewElaborate(alarm.NewWallClock(), nullPin{}, nullPin{}, nullSounder{}, alarm.Timings{
		LEDInterval:   100,
		ToneInterval:  300,
		ToneSilence:   200,
		BeepFrequency: 1000,
		BooFrequency:  600,
	})

	return newService(machine, poll)
}

// waitFor polls the condition until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}

// TestCommandQueueBounds verifies injected commands are accepted up to the
// queue size and rejected beyond it.
func TestCommandQueueBounds(t *testing.T) {
	t.Parallel()

	s := newTestService(time.Millisecond)

	for i := 0; i < commandQueueSize; i++ {
		require.True(t, s.Command(alarm.CommandActivate))
	}

	require.False(t, s.Command(alarm.CommandActivate), "full queue must reject")
}

// TestLoopConsumesSerialCommands checks the loop picks up serial bytes and
// activates the machine.
func TestLoopConsumesSerialCommands(t *testing.T) {
	t.Parallel()

	s := newTestService(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.loop(ctx, &scriptedPoller{bytes: []byte{'x', '1'}})
	}()

	waitFor(t, func() bool { return s.Snapshot().Active })

	cancel()
	require.NoError(t, <-done)

	// Shutdown quiesces the outputs.
	snap := s.Snapshot()
	require.False(t, snap.Active)
	require.False(t, snap.LEDOn)
}

// TestLoopConsumesInjectedCommands checks HTTP-injected bytes reach the
// machine when no serial link exists, including deactivation.
func TestLoopConsumesInjectedCommands(t *testing.T) {
	t.Parallel()

	s := newTestService(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.loop(ctx, nil)
	}()

	require.True(t, s.Command(alarm.CommandActivate))
	waitFor(t, func() bool { return s.Snapshot().Active })

	require.True(t, s.Command(alarm.CommandDeactivate))
	waitFor(t, func() bool { return !s.Snapshot().Active })

	cancel()
	require.NoError(t, <-done)
}
