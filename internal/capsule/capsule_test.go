package capsule

import (
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/chronobox/internal/errors"
)

func TestDeriveTitle_ShortMessage(t *testing.T) {
	title := DeriveTitle("Hello future me")

	if title != "Hello future me" {
		t.Errorf("title = %q, want %q", title, "Hello future me")
	}
	if strings.HasSuffix(title, "...") {
		t.Error("short message should not be truncated")
	}
}

func TestDeriveTitle_ExactlyTwentyRunes(t *testing.T) {
	msg := strings.Repeat("a", 20)
	title := DeriveTitle(msg)

	if title != msg {
		t.Errorf("title = %q, want untruncated %q", title, msg)
	}
}

func TestDeriveTitle_LongMessage(t *testing.T) {
	msg := "This message has twenty five!" // 29 chars
	title := DeriveTitle(msg)

	want := "This message has twe..."
	if title != want {
		t.Errorf("title = %q, want %q", title, want)
	}
}

func TestDeriveTitle_MultibyteRunes(t *testing.T) {
	msg := strings.Repeat("ü", 25)
	title := DeriveTitle(msg)

	want := strings.Repeat("ü", 20) + "..."
	if title != want {
		t.Errorf("title = %q, want %q", title, want)
	}
}

func TestDeriveTitle_ImageOnly(t *testing.T) {
	if title := DeriveTitle(""); title != ImageOnlyTitle {
		t.Errorf("title = %q, want %q", title, ImageOnlyTitle)
	}
}

func TestValidate_MessageOnly(t *testing.T) {
	now := time.Now()
	if err := Validate("hello", "", now.Add(time.Hour), now); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidate_ImageOnly(t *testing.T) {
	now := time.Now()
	if err := Validate("", "data:image/png;base64,AAAA", now.Add(time.Hour), now); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidate_NoContent(t *testing.T) {
	now := time.Now()
	err := Validate("", "", now.Add(time.Hour), now)

	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestValidate_WhitespaceMessageIsEmpty(t *testing.T) {
	now := time.Now()
	err := Validate("   \n\t ", "", now.Add(time.Hour), now)

	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestValidate_PastUnlockDate(t *testing.T) {
	now := time.Now()
	err := Validate("hello", "", now.Add(-time.Hour), now)

	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestValidate_UnlockDateEqualsNow(t *testing.T) {
	now := time.Now()
	err := Validate("hello", "", now, now)

	// Strictly-in-the-future rule: the boundary instant is rejected.
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestValidate_ZeroUnlockDate(t *testing.T) {
	err := Validate("hello", "", time.Time{}, time.Now())

	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("err = %v, want VALIDATION_ERROR", err)
	}
}
