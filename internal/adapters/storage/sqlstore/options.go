package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

// readOne loads the options of one slot.
func (s *Store) readOne(ctx context.Context, conn Conn, slotID int64) (domain.Options, error) {
	rows, err := conn.QueryContext(ctx, s.q.selectOptions, slotID)
	if err != nil {
		return nil, fmt.Errorf("querying options of slot %d: %w", slotID, err)
	}
	defer rows.Close()

	opts := domain.Options{}

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning option of slot %d: %w", slotID, err)
		}

		opts[name] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating options of slot %d: %w", slotID, err)
	}

	return opts, nil
}

// defaultReadBatch keeps read-many well under the bind-parameter limits of
// SQLite (32766) and MySQL/PostgreSQL (65535).
const defaultReadBatch = 1000

// readMany loads the options of several slots, one query per readBatch ids.
// Every requested id is present in the result, with an empty map if it has
// no options.
func (s *Store) readMany(ctx context.Context, conn Conn, slotIDs []int64) (map[int64]domain.Options, error) {
	byID := make(map[int64]domain.Options, len(slotIDs))
	for _, id := range slotIDs {
		byID[id] = domain.Options{}
	}

	batch := s.readBatch
	if batch <= 0 {
		batch = defaultReadBatch
	}

	for chunk := range slices.Chunk(slotIDs, batch) {
		if err := s.readChunk(ctx, conn, chunk, byID); err != nil {
			return nil, err
		}
	}

	return byID, nil
}

func (s *Store) readChunk(ctx context.Context, conn Conn, slotIDs []int64, byID map[int64]domain.Options) error {
	args := make([]any, len(slotIDs))
	for i, id := range slotIDs {
		args[i] = id
	}

	placeholders := strings.Repeat("?, ", len(slotIDs)-1) + "?"
	query := s.dialect.Rebind(fmt.Sprintf(
		"SELECT contentslot_id, name, value FROM %s WHERE contentslot_id IN (%s)",
		s.optionsTable, placeholders,
	))

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying options of %d slots: %w", len(slotIDs), err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slotID      int64
			name, value string
		)

		if err := rows.Scan(&slotID, &name, &value); err != nil {
			return fmt.Errorf("scanning option: %w", err)
		}

		if opts, ok := byID[slotID]; ok {
			opts[name] = value
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating options: %w", err)
	}

	return nil
}

// synchronize reconciles the stored options of slotID with desired: names no
// longer wanted are deleted, known names are updated and new names inserted.
// It reports whether any stored row changed. An update that leaves a value as
// it was is still issued but only counts when the engine reports an affected row.
//
// Statements run one after another on conn without a transaction. A failure
// part way leaves whatever statements already ran in place.
func (s *Store) synchronize(ctx context.Context, conn Conn, slotID int64, desired domain.Options) (bool, error) {
	existing, err := s.readOne(ctx, conn, slotID)
	if err != nil {
		return false, err
	}

	changed := false

	for _, name := range existing.Keys() {
		if _, keep := desired[name]; keep {
			continue
		}

		if _, err := conn.ExecContext(ctx, s.q.deleteOption, slotID, name); err != nil {
			return changed, fmt.Errorf("deleting option %q of slot %d: %w", name, slotID, err)
		}

		s.metrics.mutation(mutationDelete)
		s.traceOption(ctx, mutationDelete, slotID, name)

		changed = true
	}

	for _, name := range desired.Keys() {
		value := desired[name]

		if _, existed := existing[name]; !existed {
			if _, err := conn.ExecContext(ctx, s.q.insertOption, slotID, name, value); err != nil {
				return changed, fmt.Errorf("inserting option %q of slot %d: %w", name, slotID, err)
			}

			s.metrics.mutation(mutationInsert)
			s.traceOption(ctx, mutationInsert, slotID, name)

			changed = true

			continue
		}

		res, err := conn.ExecContext(ctx, s.q.updateOption, value, slotID, name, value)
		if err != nil {
			return changed, fmt.Errorf("updating option %q of slot %d: %w", name, slotID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return changed, fmt.Errorf("reading affected rows for option %q of slot %d: %w", name, slotID, err)
		}

		if affected > 0 {
			s.metrics.mutation(mutationUpdate)
			s.traceOption(ctx, mutationUpdate, slotID, name)

			changed = true
		}
	}

	s.logger.DebugContext(ctx, "options synchronized",
		slog.Int64(logging.KeySlotID, slotID),
		slog.Int("existing", len(existing)),
		slog.Int("desired", len(desired)),
		slog.Bool("changed", changed),
	)

	return changed, nil
}

// traceOption logs one option row write. Values are never logged.
func (s *Store) traceOption(ctx context.Context, kind string, slotID int64, name string) {
	s.logger.Log(ctx, logging.LevelTrace, "option row written",
		slog.String("kind", kind),
		slog.Int64(logging.KeySlotID, slotID),
		slog.String("name", name),
	)
}
