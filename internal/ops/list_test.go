package ops

import (
	"context"
	"testing"
	"time"

	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/errors"
)

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, err := List(env.store)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Total != 0 {
		t.Errorf("Total = %d, want 0", out.Total)
	}
	if len(out.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(out.Items))
	}
}

func TestList_InsertionOrderAndLockStates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := Create(ctx, env.store, env.gateway, CreateInput{
		Message:      "first sealed",
		UnlockDate:   time.Now().Add(time.Hour),
		SkipReminder: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := Create(ctx, env.store, env.gateway, CreateInput{
		Message:      "second sealed",
		UnlockDate:   time.Now().Add(48 * time.Hour),
		SkipReminder: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// An already-open capsule cannot be created, so seed one directly.
	opened := &capsule.Capsule{
		ID:         "opened-1",
		Message:    "from the past",
		Title:      "from the past",
		UnlockDate: time.Now().Add(-time.Hour),
		CreatedAt:  time.Now().Add(-48 * time.Hour),
	}
	if _, err := env.store.Save(opened); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := List(env.store)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if out.Total != 3 {
		t.Fatalf("Total = %d, want 3", out.Total)
	}

	if out.Items[0].ID != first.Capsule.ID || out.Items[1].ID != second.Capsule.ID || out.Items[2].ID != "opened-1" {
		t.Errorf("items out of insertion order: %s, %s, %s", out.Items[0].ID, out.Items[1].ID, out.Items[2].ID)
	}

	for _, item := range out.Items[:2] {
		if item.State != capsule.StateLocked {
			t.Errorf("item %s: State = %q, want locked", item.ID, item.State)
		}
		if item.Message != "" {
			t.Errorf("item %s: locked item exposes message %q", item.ID, item.Message)
		}
		if item.Countdown == "" {
			t.Errorf("item %s: locked item has no countdown", item.ID)
		}
	}

	last := out.Items[2]
	if last.State != capsule.StateUnlocked {
		t.Errorf("opened item: State = %q, want unlocked", last.State)
	}
	if last.Message != "from the past" {
		t.Errorf("opened item: Message = %q, want revealed", last.Message)
	}
}

func TestGet(t *testing.T) {
	env := newTestEnv(t)

	created, err := Create(context.Background(), env.store, env.gateway, CreateInput{
		Message:      "peek",
		UnlockDate:   time.Now().Add(time.Hour),
		SkipReminder: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out, err := Get(env.store, GetInput{ID: created.Capsule.ID})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.State != capsule.StateLocked {
		t.Errorf("State = %q, want locked", out.State)
	}
	if out.Message != "" {
		t.Error("locked capsule must not reveal its message")
	}
	if out.Title != "peek" {
		t.Errorf("Title = %q, want %q", out.Title, "peek")
	}
}

func TestGet_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := Get(env.store, GetInput{ID: "missing"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)

	created, err := Create(context.Background(), env.store, env.gateway, CreateInput{
		Message:      "temporary",
		UnlockDate:   time.Now().Add(time.Hour),
		SkipReminder: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	out, err := Delete(env.store, DeleteInput{ID: created.Capsule.ID})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !out.Deleted || out.Removed != 1 {
		t.Errorf("Deleted = %v, Removed = %d, want true/1", out.Deleted, out.Removed)
	}

	if _, err := Get(env.store, GetInput{ID: created.Capsule.ID}); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Get after delete: err = %v, want NOT_FOUND", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := Delete(env.store, DeleteInput{ID: "missing"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
