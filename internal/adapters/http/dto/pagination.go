package dto

import (
	"cmp"
	"encoding/base64"
	"encoding/json"
	"errors"
	"slices"

	"github.com/jsamuelsen/contentslots/internal/domain"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals a first page request. It is not a failure.
	ErrNoCursor = errors.New("no cursor provided")
)

// ComponentTypeQuery holds the query parameters of the component type listing.
type ComponentTypeQuery struct {
	ComponentType string `form:"componentType" json:"componentType" validate:"required,notempty,max=255"`

	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor" json:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (q *ComponentTypeQuery) GetLimit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}

	if q.Limit > MaxLimit {
		return MaxLimit
	}

	return q.Limit
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty when there are no more items.
	NextCursor string `json:"nextCursor,omitempty"`

	HasMore bool `json:"hasMore"`
}

// CursorData is the position encoded in a cursor: the last slot id served.
type CursorData struct {
	AfterID int64 `json:"a"`
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a cursor string. Returns ErrNoCursor when encoded is empty.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	jsonBytes, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(jsonBytes, &data); err != nil || data.AfterID < 0 {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// PaginateSlots returns the page of slots following cursor, ordered by id.
// An empty cursor starts at the beginning.
func PaginateSlots(slots []domain.ContentSlot, cursor string, limit int) (*PaginatedResponse[ContentSlotResponse], error) {
	var afterID int64

	data, err := DecodeCursor(cursor)

	switch {
	case errors.Is(err, ErrNoCursor):
	case err != nil:
		return nil, err
	default:
		afterID = data.AfterID
	}

	ordered := slices.Clone(slots)
	slices.SortFunc(ordered, func(a, b domain.ContentSlot) int {
		return cmp.Compare(a.ID, b.ID)
	})

	start, _ := slices.BinarySearchFunc(ordered, afterID+1, func(s domain.ContentSlot, id int64) int {
		return cmp.Compare(s.ID, id)
	})

	page := ordered[start:]
	hasMore := len(page) > limit

	if hasMore {
		page = page[:limit]
	}

	resp := &PaginatedResponse[ContentSlotResponse]{
		Items:   NewContentSlotResponses(page),
		HasMore: hasMore,
	}

	if hasMore && len(page) > 0 {
		resp.NextCursor = EncodeCursor(&CursorData{AfterID: page[len(page)-1].ID})
	}

	return resp, nil
}
