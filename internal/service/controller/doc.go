// Package controller runs the alarm-controller daemon: it wires the GPIO
// outputs, the serial command port and the optional status server to the
// alarm state machine, and drives the single-goroutine cooperative control
// loop that keeps the command channel responsive without ever sleeping for
// pattern durations.
package controller
