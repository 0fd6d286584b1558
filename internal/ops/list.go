package ops

import (
	"time"

	"github.com/hpungsan/chronobox/internal/store"
)

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// List returns every capsule in insertion order, each with its lock state
// evaluated against the current instant.
func List(st *store.Store) (*ListOutput, error) {
	capsules, err := st.GetAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]Item, 0, len(capsules))
	for i := range capsules {
		items = append(items, projectItem(&capsules[i], now))
	}

	return &ListOutput{
		Items: items,
		Total: len(items),
	}, nil
}
