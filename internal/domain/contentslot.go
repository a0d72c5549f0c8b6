package domain

import (
	"maps"
	"slices"
)

// ContentSlot is a positioned region on a view's layout grid, bound to the
// component that renders in it and to an open set of named options.
//
// Grid bounds follow the declarative schema: ColumnStart and RowStart are at
// least 1, ColumnEnd and RowEnd at least 2. Storage trusts these values.
type ContentSlot struct {
	// ID is assigned by storage on insert.
	ID int64

	// ViewID references the owning layout.
	ViewID int64

	// ComponentType names the component rendered in the slot.
	ComponentType string

	ColumnStart int
	ColumnEnd   int
	RowStart    int
	RowEnd      int

	// Options maps option name to value. Aggregates returned by storage
	// always carry a non-nil map.
	Options Options
}

// Options is the dynamic attribute bag of a content slot.
type Options map[string]string

// Clone returns a copy that never aliases o. A nil receiver yields an empty map.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	maps.Copy(out, o)

	return out
}

// Equal reports whether both maps hold the same keys with the same values.
// A nil map equals an empty one.
func (o Options) Equal(other Options) bool {
	return maps.Equal(o, other)
}

// Keys returns the option names in ascending order.
func (o Options) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}
