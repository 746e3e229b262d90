// Package trigger implements the host side of the command protocol: a
// one-shot write of the activation or deactivation byte to the controller's
// serial port, used by the alarm-on and alarm-off binaries.
package trigger
