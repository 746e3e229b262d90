package alarm

// Command bytes understood by the activation gate. Anything else on the
// command channel is discarded without side effects.
const (
	// CommandActivate engages alarm mode.
	CommandActivate byte = '1'
	// CommandDeactivate disengages alarm mode and forces the quiescent state.
	CommandDeactivate byte = '0'
)

// Clock is a free-running monotonic millisecond counter. It wraps at the
// uint32 maximum; all elapsed-time checks use unsigned subtraction so they
// stay correct across the wrap.
type Clock interface {
	Millis() uint32
}

// Pin is a binary output line.
type Pin interface {
	Set(high bool)
}

// Sounder is a tone generator: a square wave at the requested frequency, or
// silence.
type Sounder interface {
	Tone(hz int)
	Silence()
}

// ToneState is the buzzer sequencer position in the elaborate variant.
type ToneState uint8

// Tone sequencer states, visited cyclically in declaration order.
const (
	ToneBeep ToneState = iota
	TonePauseAfterBeep
	ToneBoo
	TonePauseAfterBoo
)

// String returns the sequencer state name for logs and snapshots.
func (s ToneState) String() string {
	switch s {
	case ToneBeep:
		return "beep"
	case TonePauseAfterBeep:
		return "pause-after-beep"
	case ToneBoo:
		return "boo"
	case TonePauseAfterBoo:
		return "pause-after-boo"
	default:
		return "unknown"
	}
}

// Timings are the fixed pattern intervals, in milliseconds and Hz.
type Timings struct {
	// LEDInterval is the LED blink half-period.
	LEDInterval uint32
	// ToneInterval is the sequencer base interval.
	ToneInterval uint32
	// ToneSilence is the extra hold added to the pause states, so a pause
	// lasts ToneInterval+ToneSilence in total.
	ToneSilence uint32
	// BeepFrequency is the BEEP tone in Hz.
	BeepFrequency int
	// BooFrequency is the BOO tone in Hz.
	BooFrequency int
}

// Machine is the alarm state machine. It owns the activation flag, the LED
// blink phase and the buzzer sequencer phase, and advances each phase
// independently from elapsed-time checks against the injected clock. It never
// blocks; the owner is expected to call Tick from a single goroutine.
type Machine struct {
	clock   Clock
	led     Pin
	idle    Pin     // inverted idle indicator, elaborate variant only
	buzzer  Pin     // digital buzzer, simple variant only
	sounder Sounder // tone buzzer, elaborate variant only
	timings Timings
	simple  bool

	active         bool
	ledPhase       bool
	lastLEDToggle  uint32
	toneState      ToneState
	lastToneChange uint32
	toneExtra      uint32
}

// Snapshot is a read-only copy of the machine state at a point in time.
type Snapshot struct {
	// Active reports whether alarm mode is engaged.
	Active bool `json:"active"`
	// LEDOn is the current LED output level.
	LEDOn bool `json:"led_on"`
	// ToneState is the sequencer position name (elaborate variant only).
	ToneState string `json:"tone_state,omitempty"`
	// Millis is the clock reading the snapshot was taken at.
	Millis uint32 `json:"millis"`
}

// NewElaborate builds the elaborate-variant machine: independent tone
// sequencer, idle indicator LED with inverted logic. Outputs are driven to
// the startup state immediately: LED off, buzzer silent, idle indicator on.
// The sequencer starts in pause-after-boo so activation enters beep on the
// first elapsed check.
func NewElaborate(clock Clock, led, idle Pin, sounder Sounder, timings Timings) *Machine {
	m := &Machine{
		clock:     clock,
		led:       led,
		idle:      idle,
		sounder:   sounder,
		timings:   timings,
		toneState: TonePauseAfterBoo,
	}
	m.quiesce()

	return m
}

// NewSimple builds the simple-variant machine: the buzzer is a second binary
// output tied to the LED phase, no tone generator and no idle indicator.
func NewSimple(clock Clock, led, buzzer Pin, ledInterval uint32) *Machine {
	m := &Machine{
		clock:   clock,
		led:     led,
		buzzer:  buzzer,
		timings: Timings{LEDInterval: ledInterval},
		simple:  true,
	}
	m.quiesce()

	return m
}

// HandleCommand applies one command byte. Activation is idempotent and does
// not reset phase timers; deactivation unconditionally forces the quiescent
// state, bypassing the phase timers. Unrecognized bytes are ignored.
func (m *Machine) HandleCommand(b byte) {
	switch b {
	case CommandActivate:
		if m.active {
			return
		}

		m.active = true

		if m.idle != nil {
			m.idle.Set(false)
		}
	case CommandDeactivate:
		m.active = false
		m.quiesce()
	}
}

// Tick advances the LED oscillator and the tone sequencer by one elapsed-time
// check each. It performs no work while inactive: deactivation already forced
// the outputs low, and the timers are deliberately not reset, so the first
// flip after re-activation may come early.
func (m *Machine) Tick() {
	if !m.active {
		return
	}

	now := m.clock.Millis()

	if now-m.lastLEDToggle >= m.timings.LEDInterval {
		m.ledPhase = !m.ledPhase
		m.led.Set(m.ledPhase)

		if m.simple {
			m.buzzer.Set(m.ledPhase)
		}

		m.lastLEDToggle = now
	}

	if m.simple {
		return
	}

	if now-m.lastToneChange >= m.toneHold() {
		m.advanceTone()
		m.lastToneChange = now
	}
}

// Active reports whether alarm mode is engaged.
func (m *Machine) Active() bool {
	return m.active
}

// Snapshot returns a copy of the observable machine state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Active: m.active,
		LEDOn:  m.ledPhase,
		Millis: m.clock.Millis(),
	}

	if !m.simple {
		s.ToneState = m.toneState.String()
	}

	return s
}

// toneHold is the elapsed time the current sequencer state is held for: the
// base interval, plus the extra silence picked up on entry to a pause state.
// Keeping the extra as part of the threshold (instead of stamping a future
// timestamp) keeps the unsigned wraparound check valid. The initial
// pause-after-boo carries no extra, so activation enters beep after one base
// interval.
func (m *Machine) toneHold() uint32 {
	return m.timings.ToneInterval + m.toneExtra
}

// advanceTone moves the sequencer to the next state and drives the sounder
// with that state's entry action. Pause states pick up the extra silence
// hold on entry.
func (m *Machine) advanceTone() {
	switch m.toneState {
	case ToneBeep:
		m.toneState = TonePauseAfterBeep
		m.toneExtra = m.timings.ToneSilence
		m.sounder.Silence()
	case TonePauseAfterBeep:
		m.toneState = ToneBoo
		m.toneExtra = 0
		m.sounder.Tone(m.timings.BooFrequency)
	case ToneBoo:
		m.toneState = TonePauseAfterBoo
		m.toneExtra = m.timings.ToneSilence
		m.sounder.Silence()
	case TonePauseAfterBoo:
		m.toneState = ToneBeep
		m.toneExtra = 0
		m.sounder.Tone(m.timings.BeepFrequency)
	}
}

// quiesce forces the outputs to the inactive configuration: LED off, buzzer
// silent, idle indicator on. The tone sequencer position is left as-is, so
// re-activation resumes the pattern from where it stopped.
func (m *Machine) quiesce() {
	m.ledPhase = false
	m.led.Set(false)

	if m.simple {
		m.buzzer.Set(false)
	} else {
		m.sounder.Silence()
	}

	if m.idle != nil {
		m.idle.Set(true)
	}
}
