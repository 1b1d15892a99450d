package beer

import "beercatalog/internal/core/id"

// Action names a committed mutation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionPatch  Action = "patch"
	ActionDelete Action = "delete"
)

// Change is the payload delivered to lifecycle hooks after commit.
// Before is nil for create, After is nil for delete.
type Change struct {
	Action Action
	Before *Beer
	After  *Beer
}

// BeerID returns the ID of the changed record.
func (c Change) BeerID() id.ID {
	if c.After != nil {
		return c.After.ID
	}
	if c.Before != nil {
		return c.Before.ID
	}
	return id.ID{}
}
