package capsule

import (
	"strings"
	"time"

	"github.com/hpungsan/chronobox/internal/errors"
)

// TitleMaxRunes is the number of leading message runes kept in a derived title.
const TitleMaxRunes = 20

// ImageOnlyTitle is the title used when a capsule holds only an image.
const ImageOnlyTitle = "Image Memory"

// Capsule represents a message and/or image sealed behind a future unlock
// date. JSON field names match the persisted collection layout.
type Capsule struct {
	// ID is a ULID that uniquely identifies this capsule
	ID string `json:"id"`

	// Message is the sealed text content (optional; at least one of
	// Message/ImageURL is present)
	Message string `json:"message,omitempty"`

	// ImageURL is the sealed image as a base64 data URL or plain URL (optional)
	ImageURL string `json:"imageUrl,omitempty"`

	// UnlockDate is the instant after which the content becomes visible
	UnlockDate time.Time `json:"unlockDate"`

	// Title is derived from the message at creation time
	Title string `json:"title"`

	// CreatedAt is when the capsule was sealed; immutable
	CreatedAt time.Time `json:"createdAt"`

	// CalendarEventID is the provider-assigned id of the reminder event,
	// present iff the reminder was created
	CalendarEventID string `json:"calendarEventId,omitempty"`

	// IsSynced is true iff CalendarEventID was obtained before the first persist
	IsSynced bool `json:"isSynced"`
}

// DeriveTitle builds a capsule title from its message: the first
// TitleMaxRunes runes plus an ellipsis when truncated, or ImageOnlyTitle
// when the message is empty.
func DeriveTitle(message string) string {
	if message == "" {
		return ImageOnlyTitle
	}
	runes := []rune(message)
	if len(runes) <= TitleMaxRunes {
		return message
	}
	return string(runes[:TitleMaxRunes]) + "..."
}

// ValidateContent checks that the capsule holds something to seal.
func ValidateContent(message, imageURL string) error {
	if strings.TrimSpace(message) == "" && imageURL == "" {
		return errors.NewValidation("a message or image is required")
	}
	return nil
}

// ValidateUnlockDate checks that the unlock date is strictly in the future.
func ValidateUnlockDate(unlockDate, now time.Time) error {
	if unlockDate.IsZero() {
		return errors.NewValidation("an unlock date is required")
	}
	if !unlockDate.After(now) {
		return errors.NewValidation("the unlock date must be in the future")
	}
	return nil
}

// Validate checks creation-time invariants: at least one of message/image
// must be present, and the unlock date must be strictly in the future.
func Validate(message, imageURL string, unlockDate, now time.Time) error {
	if err := ValidateContent(message, imageURL); err != nil {
		return err
	}
	return ValidateUnlockDate(unlockDate, now)
}
