package game

import (
	"fmt"
	"time"
)

// meterFill is the filled width of a meter of full width w at level,
// with level clamped to [0, 1].
func meterFill(level, w float64) float32 {
	return float32(min(max(level, 0), 1) * w)
}

// uptime renders d as MM:SS, switching to H:MM:SS past the first hour.
func uptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
