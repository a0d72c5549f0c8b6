package sqlstore

import (
	"github.com/jsamuelsen/contentslots/internal/domain"
)

// slotColumns is the projection every slot query selects, in scan order.
const slotColumns = "id, view_id, component_type, column_start, row_start, column_end, row_end"

// slotRow is one row of the slots table.
type slotRow struct {
	id            int64
	viewID        int64
	componentType string
	columnStart   int
	rowStart      int
	columnEnd     int
	rowEnd        int
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlotRow(sc scanner) (slotRow, error) {
	var r slotRow

	err := sc.Scan(&r.id, &r.viewID, &r.componentType, &r.columnStart, &r.rowStart, &r.columnEnd, &r.rowEnd)

	return r, err
}

// rowToObject projects a row into an aggregate with an empty option map.
func rowToObject(r slotRow) domain.ContentSlot {
	return domain.ContentSlot{
		ID:            r.id,
		ViewID:        r.viewID,
		ComponentType: r.componentType,
		ColumnStart:   r.columnStart,
		ColumnEnd:     r.columnEnd,
		RowStart:      r.rowStart,
		RowEnd:        r.rowEnd,
		Options:       domain.Options{},
	}
}

// rowToObjectWithOptions projects a row and attaches a copy of opts.
func rowToObjectWithOptions(r slotRow, opts domain.Options) domain.ContentSlot {
	slot := rowToObject(r)
	slot.Options = opts.Clone()

	return slot
}
