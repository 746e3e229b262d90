package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced millisecond counter.
type fakeClock struct {
	now uint32
}

func (c *fakeClock) Millis() uint32 {
	return c.now
}

// fakePin records the output level and every write with its timestamp.
type fakePin struct {
	clock  *fakeClock
	level  bool
	writes []pinWrite
}

type pinWrite struct {
	at   uint32
	high bool
}

func (p *fakePin) Set(high bool) {
	p.level = high
	p.writes = append(p.writes, pinWrite{at: p.clock.now, high: high})
}

// fakeSounder records tone changes with their timestamps; 0 Hz means silence.
type fakeSounder struct {
	clock  *fakeClock
	hz     int
	events []toneEvent
}

type toneEvent struct {
	at uint32
	hz int
}

func (s *fakeSounder) Tone(hz int) {
	s.hz = hz
	s.events = append(s.events, toneEvent{at: s.clock.now, hz: hz})
}

func (s *fakeSounder) Silence() {
	s.hz = 0
	s.events = append(s.events, toneEvent{at: s.clock.now, hz: 0})
}

// stockTimings are the fixed elaborate-variant intervals.
func stockTimings() Timings {
	return Timings{
		LEDInterval:   100,
		ToneInterval:  300,
		ToneSilence:   200,
		BeepFrequency: 1000,
		BooFrequency:  600,
	}
}

// rig bundles a machine with its fakes.
type rig struct {
	clock   *fakeClock
	led     *fakePin
	idle    *fakePin
	sounder *fakeSounder
	m       *Machine
}

func newRig() *rig {
	clock := new(fakeClock)
	r := &rig{
		clock:   clock,
		led:     &fakePin{clock: clock},
		idle:    &fakePin{clock: clock},
		sounder: &fakeSounder{clock: clock},
	}
	r.m = NewElaborate(clock, r.led, r.idle, r.sounder, stockTimings())

	return r
}

// runUntil advances the clock one millisecond per iteration, ticking after
// each step, until the clock reads target.
func (r *rig) runUntil(target uint32) {
	for r.clock.now != target {
		r.clock.now++
		r.m.Tick()
	}
}

// TestStartupQuiescent verifies outputs are initialized before any command:
// LED off, buzzer silent, idle indicator forced on.
func TestStartupQuiescent(t *testing.T) {
	t.Parallel()

	r := newRig()

	require.False(t, r.led.level)
	require.Zero(t, r.sounder.hz)
	require.True(t, r.idle.level)
	require.False(t, r.m.Active())
}

// TestActivationScenario replays the reference timeline: '1' at t=0, LED
// flips on at 100 ms and off at 200 ms, the sequencer enters beep at 300 ms
// emitting 1000 Hz.
func TestActivationScenario(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)

	require.False(t, r.idle.level, "idle indicator must drop on activation")

	r.runUntil(99)
	require.False(t, r.led.level)

	r.runUntil(100)
	require.True(t, r.led.level)

	r.runUntil(200)
	require.False(t, r.led.level)
	require.Zero(t, r.sounder.hz, "no tone before the first base interval")

	r.runUntil(300)
	require.Equal(t, 1000, r.sounder.hz)
	require.Equal(t, "beep", r.m.Snapshot().ToneState)
}

// TestLEDFlipSpacing checks the LED flips exactly once per interval while
// active, with flip timestamps spaced by the interval.
func TestLEDFlipSpacing(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)
	r.runUntil(1000)

	// Startup forced one low write; skip it.
	flips := r.led.writes[1:]
	require.Len(t, flips, 10)

	for i, w := range flips {
		require.Equal(t, uint32(100*(i+1)), w.at)
		require.Equal(t, i%2 == 0, w.high)
	}
}

// TestToneSequenceOrder verifies the cyclic order and hold times:
// beep and boo hold for the base interval, pauses for base plus silence.
func TestToneSequenceOrder(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)
	r.runUntil(2000)

	// Startup quiesce records one silence at t=0; drop it.
	events := r.sounder.events[1:]

	expected := []toneEvent{
		{at: 300, hz: 1000}, // beep
		{at: 600, hz: 0},    // pause-after-beep, holds 500
		{at: 1100, hz: 600}, // boo
		{at: 1400, hz: 0},   // pause-after-boo, holds 500
		{at: 1900, hz: 1000},
	}
	require.GreaterOrEqual(t, len(events), len(expected))
	require.Equal(t, expected, events[:len(expected)])
}

// TestDeactivateForcesQuiescent checks '0' drops the LED and silences the
// buzzer in the same iteration regardless of phase, with no further flips.
func TestDeactivateForcesQuiescent(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)
	r.runUntil(350) // LED on, mid-beep

	require.True(t, r.led.level)
	require.Equal(t, 1000, r.sounder.hz)

	r.m.HandleCommand(CommandDeactivate)

	require.False(t, r.led.level)
	require.Zero(t, r.sounder.hz)
	require.True(t, r.idle.level)

	ledWrites := len(r.led.writes)
	toneEvents := len(r.sounder.events)

	r.runUntil(2000)
	require.Len(t, r.led.writes, ledWrites, "no flips while inactive")
	require.Len(t, r.sounder.events, toneEvents)
}

// TestActivateIdempotent verifies a second '1' changes nothing observable.
func TestActivateIdempotent(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)
	r.runUntil(150)

	before := r.m.Snapshot()
	ledWrites := len(r.led.writes)
	idleWrites := len(r.idle.writes)

	r.m.HandleCommand(CommandActivate)

	require.Equal(t, before, r.m.Snapshot())
	require.Len(t, r.led.writes, ledWrites)
	require.Len(t, r.idle.writes, idleWrites)

	// Next flip still lands on the original grid.
	r.runUntil(200)
	require.False(t, r.led.level)
}

// TestUnknownBytesIgnored verifies bytes other than '0'/'1' have no effect.
func TestUnknownBytesIgnored(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)
	r.runUntil(150)

	before := r.m.Snapshot()
	ledWrites := len(r.led.writes)
	toneEvents := len(r.sounder.events)

	for _, b := range []byte{'2', 'x', 0x00, 0xFF, ' '} {
		r.m.HandleCommand(b)
	}

	require.Equal(t, before, r.m.Snapshot())
	require.Len(t, r.led.writes, ledWrites)
	require.Len(t, r.sounder.events, toneEvents)
}

// TestReactivationResumesToneState verifies the sequencer position survives
// deactivation and the pattern resumes from it.
func TestReactivationResumesToneState(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.m.HandleCommand(CommandActivate)
	r.runUntil(1150) // inside boo

	require.Equal(t, "boo", r.m.Snapshot().ToneState)

	r.m.HandleCommand(CommandDeactivate)
	r.runUntil(5000)

	r.m.HandleCommand(CommandActivate)
	require.Equal(t, "boo", r.m.Snapshot().ToneState)

	// The gate fires immediately (elapsed far beyond the hold) and moves on
	// to pause-after-boo. Accepted policy, not a reset.
	r.runUntil(5001)
	require.Equal(t, "pause-after-boo", r.m.Snapshot().ToneState)
	require.Zero(t, r.sounder.hz)
}

// TestClockWraparound verifies elapsed-time checks stay correct when the
// millisecond counter wraps at the uint32 maximum.
func TestClockWraparound(t *testing.T) {
	t.Parallel()

	r := newRig()
	r.clock.now = ^uint32(0) - 250
	r.m.HandleCommand(CommandActivate)

	// First tick flips immediately (stamps start at zero) and syncs the
	// timers to the current reading.
	r.m.Tick()
	require.True(t, r.led.level)

	start := r.clock.now
	r.runUntil(start + 500) // crosses zero

	flips := r.led.writes[2:] // skip startup write and the sync flip
	require.Len(t, flips, 5)

	for i, w := range flips {
		require.Equal(t, start+uint32(100*(i+1)), w.at)
	}
}

// TestSimpleVariantBuzzerFollowsLED verifies the simple variant drives the
// buzzer pin to the LED phase at the single 250 ms interval.
func TestSimpleVariantBuzzerFollowsLED(t *testing.T) {
	t.Parallel()

	clock := new(fakeClock)
	led := &fakePin{clock: clock}
	buzzer := &fakePin{clock: clock}
	m := NewSimple(clock, led, buzzer, 250)

	require.False(t, led.level)
	require.False(t, buzzer.level)

	m.HandleCommand(CommandActivate)

	for clock.now < 1000 {
		clock.now++
		m.Tick()
		require.Equal(t, led.level, buzzer.level)
	}

	// Four flips in a second at 250 ms.
	require.Len(t, led.writes[1:], 4)

	m.HandleCommand(CommandDeactivate)
	require.False(t, led.level)
	require.False(t, buzzer.level)

	snap := m.Snapshot()
	require.Empty(t, snap.ToneState, "simple variant has no sequencer")
}
