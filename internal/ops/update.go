package ops

import (
	"time"

	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/errors"
	"github.com/hpungsan/chronobox/internal/store"
)

// UpdateInput contains parameters for the Update operation.
// Nil fields are left unchanged.
type UpdateInput struct {
	ID         string
	Message    *string
	ImageURL   *string
	UnlockDate *time.Time
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	Capsule capsule.Capsule `json:"capsule"`
}

// Update edits a sealed capsule. The result must still satisfy the
// creation invariants: some content present, and a changed unlock date
// strictly in the future. When the message changes the title is
// re-derived from it.
func Update(st *store.Store, input UpdateInput) (*UpdateOutput, error) {
	if input.Message == nil && input.ImageURL == nil && input.UnlockDate == nil {
		return nil, errors.NewValidation("at least one editable field must be provided")
	}

	existing, err := st.GetByID(input.ID)
	if err != nil {
		return nil, err
	}

	// Effective values after the merge.
	message := existing.Message
	if input.Message != nil {
		message = *input.Message
	}
	imageURL := existing.ImageURL
	if input.ImageURL != nil {
		imageURL = *input.ImageURL
	}
	if err := capsule.ValidateContent(message, imageURL); err != nil {
		return nil, err
	}
	// A changed unlock date must be in the future; an untouched date on
	// an already-unlocked capsule is not revalidated.
	if input.UnlockDate != nil {
		if err := capsule.ValidateUnlockDate(*input.UnlockDate, time.Now()); err != nil {
			return nil, err
		}
	}

	partial := store.Partial{
		Message:    input.Message,
		ImageURL:   input.ImageURL,
		UnlockDate: input.UnlockDate,
	}
	if input.Message != nil {
		title := capsule.DeriveTitle(message)
		partial.Title = &title
	}

	updated, err := st.Update(input.ID, partial)
	if err != nil {
		return nil, err
	}

	return &UpdateOutput{Capsule: *updated}, nil
}
