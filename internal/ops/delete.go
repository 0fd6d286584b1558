package ops

import (
	"github.com/hpungsan/chronobox/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
	Removed int    `json:"removed"`
}

// Delete destroys a capsule. All entries sharing the id are removed.
func Delete(st *store.Store, input DeleteInput) (*DeleteOutput, error) {
	removed, err := st.Delete(input.ID)
	if err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      input.ID,
		Removed: removed,
	}, nil
}
