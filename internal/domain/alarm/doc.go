// Package alarm contains the core controller state machine.
//
// Machine holds the activation flag, the LED blink phase and the buzzer tone
// sequencer position, and advances each phase independently by comparing a
// free-running millisecond clock against fixed intervals. It never sleeps or
// blocks: the owning loop polls commands, calls Tick, and stays responsive.
// Hardware is abstracted behind the Pin, Sounder and Clock interfaces.
package alarm
