// Package serialport is the command link to the controller: a non-blocking
// single-byte receiver for the device side, and a one-shot byte sender for
// the host-side trigger binaries. Ports are opened at 8N1 via
// go.bug.st/serial.v1, with first-available autodetection when no device
// path is configured.
package serialport
