// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver rows or infrastructure types
//   - Error returns use domain error types (DuplicateEntryError, StorageError)
//   - A missing row is reported with a found flag, not with an error
package ports

import (
	"context"

	"github.com/jsamuelsen/contentslots/internal/domain"
)

// ContentSlotRepository persists content slots together with their options.
//
// Implementations read and write the slot row and its option rows as one
// aggregate. Option rows are never exposed through this port.
type ContentSlotRepository interface {
	// Create inserts the slot and its options and returns the new identifier.
	// slot.ID is ignored. Returns *domain.DuplicateEntryError when a
	// uniqueness constraint rejects the row.
	Create(ctx context.Context, slot domain.ContentSlot) (int64, error)

	// GetByID returns the slot with its options. found is false when no slot
	// has that identifier.
	GetByID(ctx context.Context, id int64) (slot domain.ContentSlot, found bool, err error)

	// GetByViewID returns every slot of a view with options hydrated.
	// An empty view yields an empty, non-nil slice.
	GetByViewID(ctx context.Context, viewID int64) ([]domain.ContentSlot, error)

	// GetByComponentType returns the slots rendering a component type.
	// Options are NOT hydrated: every returned slot has an empty map.
	GetByComponentType(ctx context.Context, componentType string) ([]domain.ContentSlot, error)

	// Update rewrites the scalar fields of slot.ID and reconciles its options.
	// found is true when the row or the option set changed.
	Update(ctx context.Context, slot domain.ContentSlot) (id int64, found bool, err error)

	// DeleteOne removes the slot. found is false when nothing was deleted.
	DeleteOne(ctx context.Context, id int64) (deleted int64, found bool, err error)
}
