package ops

import (
	"context"
	"time"

	"github.com/hpungsan/chronobox/internal/calendar"
	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/store"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Message    string
	ImageURL   string
	UnlockDate time.Time

	// SkipReminder stores the capsule without scheduling a calendar
	// event; the capsule is persisted unsynced.
	SkipReminder bool
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	Capsule capsule.Capsule `json:"capsule"`
}

// Create seals a new capsule: validate, derive the title, schedule the
// reminder event, then persist. The reminder is created before the first
// persist, so a capsule is synced iff its event exists; a reminder
// failure aborts the whole creation and nothing is stored.
func Create(ctx context.Context, st *store.Store, gw *calendar.Gateway, input CreateInput) (*CreateOutput, error) {
	now := time.Now()
	if err := capsule.Validate(input.Message, input.ImageURL, input.UnlockDate, now); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	c := &capsule.Capsule{
		ID:         id,
		Message:    input.Message,
		ImageURL:   input.ImageURL,
		UnlockDate: input.UnlockDate,
		Title:      capsule.DeriveTitle(input.Message),
		CreatedAt:  now,
		IsSynced:   false,
	}

	if !input.SkipReminder {
		event, err := gw.CreateReminder(ctx, c)
		if err != nil {
			return nil, err
		}
		c.CalendarEventID = event.Id
		c.IsSynced = true
	}

	if _, err := st.Save(c); err != nil {
		return nil, err
	}

	return &CreateOutput{Capsule: *c}, nil
}
