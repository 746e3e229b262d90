// Package web is the optional HTTP status surface of the controller:
// snapshot and websocket endpoints for observing the alarm state, and
// control endpoints mirroring the serial byte protocol.
package web
