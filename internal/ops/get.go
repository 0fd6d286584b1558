package ops

import (
	"time"

	"github.com/hpungsan/chronobox/internal/store"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID string
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	Item
}

// Get retrieves a single capsule by id with its lock state evaluated.
// Locked capsules keep their message and image withheld.
func Get(st *store.Store, input GetInput) (*GetOutput, error) {
	c, err := st.GetByID(input.ID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Item: projectItem(c, time.Now())}, nil
}
