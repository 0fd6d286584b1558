// Package ops implements the view-facing operation layer: every surface
// (CLI, web UI, MCP) goes through these functions rather than touching
// the store or the calendar gateway directly.
package ops

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/chronobox/internal/capsule"
)

// Item is the view-facing projection of a capsule. Lock state is
// evaluated against the current instant, and the sealed content (message,
// image) is withheld while locked so no surface reveals it early.
type Item struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	UnlockDate      time.Time          `json:"unlock_date"`
	CreatedAt       time.Time          `json:"created_at"`
	IsSynced        bool               `json:"is_synced"`
	CalendarEventID string             `json:"calendar_event_id,omitempty"`
	State           capsule.State      `json:"state"`
	Remaining       *capsule.Countdown `json:"remaining,omitempty"`
	Countdown       string             `json:"countdown,omitempty"`

	// Message and ImageURL are populated only when unlocked.
	Message  string `json:"message,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// projectItem evaluates the capsule at now and builds its projection.
func projectItem(c *capsule.Capsule, now time.Time) Item {
	ls := capsule.Evaluate(c, now)
	item := Item{
		ID:              c.ID,
		Title:           c.Title,
		UnlockDate:      c.UnlockDate,
		CreatedAt:       c.CreatedAt,
		IsSynced:        c.IsSynced,
		CalendarEventID: c.CalendarEventID,
		State:           ls.State,
	}
	if ls.Locked() {
		remaining := ls.Remaining
		item.Remaining = &remaining
		item.Countdown = remaining.String()
	} else {
		item.Message = c.Message
		item.ImageURL = c.ImageURL
	}
	return item
}

// generateULID generates a new capsule id.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
