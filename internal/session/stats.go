package session

import (
	"fmt"
	"time"
)

// Elapsed is the connected duration at now, or zero when there is no
// session. Pure so the display tick needs no state of its own.
func Elapsed(now, connectedSince time.Time) time.Duration {
	if connectedSince.IsZero() || now.Before(connectedSince) {
		return 0
	}
	return now.Sub(connectedSince)
}

// FormatElapsed renders a duration as M:SS for the session timer.
func FormatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
