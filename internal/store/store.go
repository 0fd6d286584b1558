// Package store persists the capsule collection as a single JSON-array
// blob under one fixed storage slot. Every mutation is a full
// read-modify-write of the whole collection; with a single user and a
// hand-curated list of capsules the cardinality stays small enough that
// the rewrite cost does not matter. Concurrent writers race with
// last-write-wins semantics, which is a documented limitation.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hpungsan/chronobox/internal/capsule"
	"github.com/hpungsan/chronobox/internal/db"
	"github.com/hpungsan/chronobox/internal/errors"
)

// StorageSlot is the fixed slot name holding the capsule collection.
const StorageSlot = "digital_time_capsule_data"

// Store reads and writes the capsule collection.
type Store struct {
	db *sql.DB
}

// New creates a Store over the given database.
func New(database *sql.DB) *Store {
	return &Store{db: database}
}

// Save appends one capsule to the collection and persists it, returning
// the capsule unchanged. There is no duplicate-id check: a caller
// supplying a colliding id produces two entries with the same id, which
// the historical persisted format allows.
func (s *Store) Save(c *capsule.Capsule) (*capsule.Capsule, error) {
	capsules, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	capsules = append(capsules, *c)
	if err := s.writeAll(capsules); err != nil {
		return nil, err
	}
	return c, nil
}

// GetAll returns the full collection in insertion order, or an empty
// slice when nothing has been stored yet. The blob has no schema version
// field, so parsing is best-effort: entries that fail to decode are
// skipped rather than failing the whole read.
func (s *Store) GetAll() ([]capsule.Capsule, error) {
	value, ok, err := db.ReadSlot(s.db, StorageSlot)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok || value == "" {
		return []capsule.Capsule{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		// Unrecognizable blob; treat as empty rather than wedging every read.
		return []capsule.Capsule{}, nil
	}

	capsules := make([]capsule.Capsule, 0, len(raw))
	for _, entry := range raw {
		var c capsule.Capsule
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		capsules = append(capsules, c)
	}
	return capsules, nil
}

// GetByID returns the first capsule whose id matches.
func (s *Store) GetByID(id string) (*capsule.Capsule, error) {
	capsules, err := s.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range capsules {
		if capsules[i].ID == id {
			c := capsules[i]
			return &c, nil
		}
	}
	return nil, errors.NewNotFound("capsule", id)
}

// Delete removes all entries matching id and persists the remainder,
// returning how many entries were removed.
func (s *Store) Delete(id string) (int, error) {
	capsules, err := s.GetAll()
	if err != nil {
		return 0, err
	}

	remaining := make([]capsule.Capsule, 0, len(capsules))
	removed := 0
	for _, c := range capsules {
		if c.ID == id {
			removed++
			continue
		}
		remaining = append(remaining, c)
	}
	if removed == 0 {
		return 0, errors.NewNotFound("capsule", id)
	}

	if err := s.writeAll(remaining); err != nil {
		return 0, err
	}
	return removed, nil
}

// Partial holds the fields an Update may change. Nil means leave unchanged.
type Partial struct {
	Message         *string
	ImageURL        *string
	UnlockDate      *time.Time
	Title           *string
	CalendarEventID *string
	IsSynced        *bool
}

// Update merges partial fields into the first matching entry, persists the
// collection, and returns the updated entry.
func (s *Store) Update(id string, partial Partial) (*capsule.Capsule, error) {
	capsules, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	for i := range capsules {
		if capsules[i].ID != id {
			continue
		}

		if partial.Message != nil {
			capsules[i].Message = *partial.Message
		}
		if partial.ImageURL != nil {
			capsules[i].ImageURL = *partial.ImageURL
		}
		if partial.UnlockDate != nil {
			capsules[i].UnlockDate = *partial.UnlockDate
		}
		if partial.Title != nil {
			capsules[i].Title = *partial.Title
		}
		if partial.CalendarEventID != nil {
			capsules[i].CalendarEventID = *partial.CalendarEventID
		}
		if partial.IsSynced != nil {
			capsules[i].IsSynced = *partial.IsSynced
		}

		if err := s.writeAll(capsules); err != nil {
			return nil, err
		}
		updated := capsules[i]
		return &updated, nil
	}

	return nil, errors.NewNotFound("capsule", id)
}

// writeAll serializes the whole collection into the slot.
func (s *Store) writeAll(capsules []capsule.Capsule) error {
	data, err := json.Marshal(capsules)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := db.WriteSlot(s.db, StorageSlot, string(data), time.Now().Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
