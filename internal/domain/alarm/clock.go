package alarm

import "time"

// WallClock is the production Clock: milliseconds since construction,
// truncated to uint32 so it wraps after about 49.7 days like a fixed-width
// firmware counter would.
type WallClock struct {
	start time.Time
}

// NewWallClock returns a WallClock starting at zero.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Millis returns the wrapped millisecond reading.
func (c *WallClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
