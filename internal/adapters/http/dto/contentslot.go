package dto

import (
	"strconv"

	"github.com/jsamuelsen/contentslots/internal/domain"
)

// ContentSlotRequest is the body of create and update requests.
// Grid bounds are validated here; storage trusts them.
type ContentSlotRequest struct {
	ViewID        int64             `json:"viewId"        validate:"required,gte=1"`
	ComponentType string            `json:"componentType" validate:"required,notempty,max=255"`
	ColumnStart   int               `json:"columnStart"   validate:"required,gte=1,lte=32767"`
	ColumnEnd     int               `json:"columnEnd"     validate:"required,gte=2,lte=32767"`
	RowStart      int               `json:"rowStart"      validate:"required,gte=1,lte=32767"`
	RowEnd        int               `json:"rowEnd"        validate:"required,gte=2,lte=32767"`
	Options       map[string]string `json:"options"       validate:"omitempty,max=64,dive,keys,notempty,max=191,endkeys,max=4096"`
}

// ToDomain converts the request into an aggregate with the given id.
func (r *ContentSlotRequest) ToDomain(id int64) domain.ContentSlot {
	return domain.ContentSlot{
		ID:            id,
		ViewID:        r.ViewID,
		ComponentType: r.ComponentType,
		ColumnStart:   r.ColumnStart,
		ColumnEnd:     r.ColumnEnd,
		RowStart:      r.RowStart,
		RowEnd:        r.RowEnd,
		Options:       domain.Options(r.Options).Clone(),
	}
}

// ContentSlotResponse is the JSON form of a content slot.
type ContentSlotResponse struct {
	ID            int64             `json:"id"`
	ViewID        int64             `json:"viewId"`
	ComponentType string            `json:"componentType"`
	ColumnStart   int               `json:"columnStart"`
	ColumnEnd     int               `json:"columnEnd"`
	RowStart      int               `json:"rowStart"`
	RowEnd        int               `json:"rowEnd"`
	Options       map[string]string `json:"options"`
}

// IDResponse is returned by create and update.
type IDResponse struct {
	ID int64 `json:"id"`
}

// ContentSlotListResponse wraps a list of slots.
type ContentSlotListResponse struct {
	Items []ContentSlotResponse `json:"items"`
}

// ViewsResponse maps view id to the slots of that view.
type ViewsResponse struct {
	Views map[string][]ContentSlotResponse `json:"views"`
}

// NewContentSlotResponse converts an aggregate. Options is never null in JSON.
func NewContentSlotResponse(slot domain.ContentSlot) ContentSlotResponse {
	return ContentSlotResponse{
		ID:            slot.ID,
		ViewID:        slot.ViewID,
		ComponentType: slot.ComponentType,
		ColumnStart:   slot.ColumnStart,
		ColumnEnd:     slot.ColumnEnd,
		RowStart:      slot.RowStart,
		RowEnd:        slot.RowEnd,
		Options:       slot.Options.Clone(),
	}
}

// NewContentSlotResponses converts a list. The result is never nil.
func NewContentSlotResponses(slots []domain.ContentSlot) []ContentSlotResponse {
	out := make([]ContentSlotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, NewContentSlotResponse(slot))
	}

	return out
}

// NewViewsResponse converts the result of a multi-view load.
func NewViewsResponse(byView map[int64][]domain.ContentSlot) ViewsResponse {
	views := make(map[string][]ContentSlotResponse, len(byView))
	for viewID, slots := range byView {
		views[strconv.FormatInt(viewID, 10)] = NewContentSlotResponses(slots)
	}

	return ViewsResponse{Views: views}
}
