package capsule

import (
	"fmt"
	"time"
)

// State is a capsule's lifecycle state at a given instant.
type State string

const (
	StateLocked   State = "locked"
	StateUnlocked State = "unlocked"
)

// Countdown is the remaining time before unlock, decomposed into whole
// days, hours, minutes, and seconds.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

// String renders the countdown the way the vault displays it, e.g. "2d 4h 5m 6s".
func (c Countdown) String() string {
	return fmt.Sprintf("%dd %dh %dm %ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

// LockState is the result of evaluating a capsule against an instant.
type LockState struct {
	State State `json:"state"`

	// Remaining is the countdown to unlock; only meaningful when locked.
	Remaining Countdown `json:"remaining,omitempty"`
}

// Locked reports whether the capsule content is still sealed.
func (ls LockState) Locked() bool {
	return ls.State == StateLocked
}

// Millisecond divisors for the countdown decomposition.
const (
	msPerDay    = 24 * 60 * 60 * 1000
	msPerHour   = 60 * 60 * 1000
	msPerMinute = 60 * 1000
	msPerSecond = 1000
)

// Evaluate returns the capsule's lock state at the given instant. A capsule
// unlocks at the exact boundary instant (non-strict comparison). The
// countdown is computed by successive integer division of the millisecond
// delta, so the decomposition always sums back to the whole-second part of
// the delta.
func Evaluate(c *Capsule, now time.Time) LockState {
	if !now.Before(c.UnlockDate) {
		return LockState{State: StateUnlocked}
	}

	delta := c.UnlockDate.Sub(now).Milliseconds()
	days := delta / msPerDay
	delta -= days * msPerDay
	hours := delta / msPerHour
	delta -= hours * msPerHour
	minutes := delta / msPerMinute
	delta -= minutes * msPerMinute
	seconds := delta / msPerSecond

	return LockState{
		State: StateLocked,
		Remaining: Countdown{
			Days:    days,
			Hours:   hours,
			Minutes: minutes,
			Seconds: seconds,
		},
	}
}
