package gpio

import (
	rpio "github.com/stianeikeland/go-rpio/v4"

	"github.com/AlbertDoesNothing/Myriad/internal/logger"
)

// Open maps the GPIO memory range. It fails on hosts without the BCM283x
// peripheral (or without permission), in which case callers fall back to the
// no-op outputs below.
func Open() error {
	return rpio.Open()
}

// Close unmaps the GPIO memory range.
func Close() error {
	return rpio.Close()
}

// OutputPin drives a BCM pin as a binary output.
type OutputPin struct {
	pin rpio.Pin
}

// NewOutputPin configures the BCM pin for output, initially low.
func NewOutputPin(bcm int) *OutputPin {
	pin := rpio.Pin(bcm)
	pin.Output()
	pin.Low()

	return &OutputPin{pin: pin}
}

// Set drives the pin high or low.
func (p *OutputPin) Set(high bool) {
	if high {
		p.pin.High()
	} else {
		p.pin.Low()
	}
}

// pwmCycle is the PWM cycle length; with a 50% duty the output is a square
// wave at clock/pwmCycle Hz.
const pwmCycle = 32

// PWMBuzzer drives a piezo buzzer from a hardware PWM pin.
type PWMBuzzer struct {
	pin rpio.Pin
}

// NewPWMBuzzer configures the BCM pin for PWM, initially silent.
func NewPWMBuzzer(bcm int) *PWMBuzzer {
	pin := rpio.Pin(bcm)
	pin.Mode(rpio.Pwm)
	pin.DutyCycle(0, pwmCycle)

	return &PWMBuzzer{pin: pin}
}

// Tone emits a square wave at the requested frequency.
func (b *PWMBuzzer) Tone(hz int) {
	b.pin.Freq(hz * pwmCycle)
	b.pin.DutyCycle(pwmCycle/2, pwmCycle)
}

// Silence stops the output by dropping the duty cycle to zero.
func (b *PWMBuzzer) Silence() {
	b.pin.DutyCycle(0, pwmCycle)
}

// FallbackPin is a no-op output used when real pins are unavailable, so the
// controller still runs on development hosts. Transitions land in the debug
// log instead of on hardware.
type FallbackPin struct {
	// Name identifies the line in log output.
	Name string
}

// Set records the transition in the debug log.
func (p *FallbackPin) Set(high bool) {
	logger.Logger().Debugw("Fake pin set", "pin", p.Name, "high", high)
}

// FallbackSounder is the no-op counterpart for the buzzer.
type FallbackSounder struct{}

// Tone records the requested frequency in the debug log.
func (s *FallbackSounder) Tone(hz int) {
	logger.Logger().Debugw("Fake buzzer tone", "hz", hz)
}

// Silence records the stop in the debug log.
func (s *FallbackSounder) Silence() {
	logger.Logger().Debugw("Fake buzzer silenced")
}
