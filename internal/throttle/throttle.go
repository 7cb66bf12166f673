package throttle

import (
	"time"

	"github.com/roverlink/roverctl_client/internal/models"
)

const DefaultMinInterval = 100 * time.Millisecond

// Throttle decides whether a candidate command is worth transmitting given
// the previous command and elapsed time. A changed command always goes out;
// an identical repeat is suppressed until the window elapses. Not safe for
// concurrent use; callers serialize.
type Throttle struct {
	minInterval time.Duration

	hasLast    bool
	last       models.Command
	lastSentAt time.Time
}

func New(minInterval time.Duration) *Throttle {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Throttle{minInterval: minInterval}
}

// Accept is the decide-and-commit step: state is recorded only when the
// candidate is accepted.
func (t *Throttle) Accept(candidate models.Command, now time.Time) bool {
	if t.hasLast && candidate == t.last && now.Sub(t.lastSentAt) <= t.minInterval {
		return false
	}
	t.record(candidate, now)
	return true
}

// Record commits a command that bypassed the throttle decision, so later
// repeats of it are still deduplicated.
func (t *Throttle) Record(cmd models.Command, now time.Time) {
	t.record(cmd, now)
}

func (t *Throttle) record(cmd models.Command, now time.Time) {
	t.hasLast = true
	t.last = cmd
	t.lastSentAt = now
}

// Reset clears the state so the first command of a fresh session is never
// suppressed by leftovers from the previous one.
func (t *Throttle) Reset() {
	t.hasLast = false
	t.last = models.Command{}
	t.lastSentAt = time.Time{}
}
