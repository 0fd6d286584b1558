package errors

import (
	"fmt"
	"testing"
)

func TestChronoError_Error(t *testing.T) {
	err := &ChronoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "capsule not found",
	}

	expected := "NOT_FOUND: capsule not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("a message or image is required")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "a message or image is required" {
		t.Errorf("Message = %q, want %q", err.Message, "a message or image is required")
	}
}

func TestNewAuthentication(t *testing.T) {
	err := NewAuthentication("access_denied: user declined consent")

	if err.Code != ErrAuthentication {
		t.Errorf("Code = %q, want %q", err.Code, ErrAuthentication)
	}
	if err.Status != 401 {
		t.Errorf("Status = %d, want 401", err.Status)
	}
	if err.Message != "access_denied: user declined consent" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewAuthentication_DefaultMessage(t *testing.T) {
	err := NewAuthentication("")

	if err.Message != "authentication failed" {
		t.Errorf("Message = %q, want %q", err.Message, "authentication failed")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("capsule", "01ARZ3NDEKTSV4RRFFQ69G5FAV")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("Details[identifier] = %v", err.Details["identifier"])
	}
}

func TestNewConfiguration(t *testing.T) {
	err := NewConfiguration("missing Google client ID")

	if err.Code != ErrConfiguration {
		t.Errorf("Code = %q, want %q", err.Code, ErrConfiguration)
	}
	if err.Status != 500 {
		t.Errorf("Status = %d, want 500", err.Status)
	}
}

func TestNewPopupBlocked(t *testing.T) {
	err := NewPopupBlocked()

	if err.Code != ErrPopupBlocked {
		t.Errorf("Code = %q, want %q", err.Code, ErrPopupBlocked)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
}

func TestNewRemoteAPI(t *testing.T) {
	err := NewRemoteAPI("create event", fmt.Errorf("quota exceeded"))

	if err.Code != ErrRemoteAPI {
		t.Errorf("Code = %q, want %q", err.Code, ErrRemoteAPI)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Message != "create event failed: quota exceeded" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details["operation"] != "create event" {
		t.Errorf("Details[operation] = %v", err.Details["operation"])
	}
}

func TestNewInitialization(t *testing.T) {
	err := NewInitialization("calendar endpoint unreachable")

	if err.Code != ErrInitialization {
		t.Errorf("Code = %q, want %q", err.Code, ErrInitialization)
	}
	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))

	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)

	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	notFound := NewNotFound("capsule", "abc")

	if !Is(notFound, ErrNotFound) {
		t.Error("Is(notFound, ErrNotFound) = false, want true")
	}
	if Is(notFound, ErrValidation) {
		t.Error("Is(notFound, ErrValidation) = true, want false")
	}
	if Is(fmt.Errorf("plain error"), ErrNotFound) {
		t.Error("Is(plain, ErrNotFound) = true, want false")
	}
	if Is(nil, ErrNotFound) {
		t.Error("Is(nil, ErrNotFound) = true, want false")
	}
}
