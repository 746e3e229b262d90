// Package config defines the controller settings used by the binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the serial port parameters, GPIO pin assignments,
// the controller variant and the alarm pattern timings. All fields default
// to the stock firmware constants, so an empty or missing settings file
// yields the canonical elaborate-variant behavior.
package config
