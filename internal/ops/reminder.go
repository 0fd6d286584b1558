package ops

import (
	"context"

	"github.com/hpungsan/chronobox/internal/calendar"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/store"
)

// CheckReminderInput contains parameters for the CheckReminder operation.
type CheckReminderInput struct {
	ID string
}

// CheckReminderOutput describes the reminder event backing a capsule.
type CheckReminderOutput struct {
	CapsuleID string `json:"capsule_id"`
	EventID   string `json:"event_id"`
	Summary   string `json:"summary"`
	Start     string `json:"start,omitempty"`
	HTMLLink  string `json:"html_link,omitempty"`
	Status    string `json:"status,omitempty"`
}

// CheckReminder fetches the calendar event scheduled for a capsule,
// verifying the reminder still exists on the provider side.
func CheckReminder(ctx context.Context, st *store.Store, gw *calendar.Gateway, input CheckReminderInput) (*CheckReminderOutput, error) {
	c, err := st.GetByID(input.ID)
	if err != nil {
		return nil, err
	}
	if c.CalendarEventID == "" {
		return nil, errors.NewValidation("capsule has no reminder event; it was stored unsynced")
	}

	event, err := gw.FetchReminder(ctx, c.CalendarEventID)
	if err != nil {
		return nil, err
	}

	out := &CheckReminderOutput{
		CapsuleID: c.ID,
		EventID:   event.Id,
		Summary:   event.Summary,
		HTMLLink:  event.HtmlLink,
		Status:    event.Status,
	}
	if event.Start != nil {
		out.Start = event.Start.DateTime
	}
	return out, nil
}
