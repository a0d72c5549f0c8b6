// Package sqlstore persists content slots and their options in a relational
// database through database/sql. MySQL, PostgreSQL and SQLite are supported.
//
// Each operation acquires one connection from the pool, runs every statement
// on it in sequence and releases it before returning. Driver failures never
// leave the package raw: duplicate keys become *domain.DuplicateEntryError and
// everything else *domain.StorageError, both carrying the engine's code.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/ports"
)

const instrumentationName = "github.com/jsamuelsen/contentslots/internal/adapters/storage/sqlstore"

// entityContentSlot names the entity in duplicate entry errors.
const entityContentSlot = "contentslot"

// Operation names used for spans, metrics and StorageError.Op.
const (
	opCreate             = "create"
	opDeleteOne          = "delete_one"
	opGetByID            = "get_by_id"
	opGetByViewID        = "get_by_view_id"
	opGetByComponentType = "get_by_component_type"
	opUpdate             = "update"
)

// ErrInvalidTablePrefix is returned by New for a prefix that is not a plain identifier.
var ErrInvalidTablePrefix = errors.New("invalid table prefix")

// The prefix is interpolated into SQL text, so only identifier characters are allowed.
var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,31}$`)

// Compile-time interface check.
var _ ports.ContentSlotRepository = (*Store)(nil)

// Config configures a Store.
type Config struct {
	Pool    Pool
	Dialect Dialect

	// TablePrefix is prepended to both table names. Empty means none.
	TablePrefix string

	Logger  *slog.Logger
	Metrics *Metrics
}

// queries holds the statements of a Store, already rebound for its dialect.
// insertSlot is rebound by insertReturningID.
type queries struct {
	insertSlot        string
	deleteSlot        string
	selectByID        string
	selectByView      string
	selectByComponent string
	updateSlot        string
	slotExists        string
	selectOptions     string
	insertOption      string
	updateOption      string
	deleteOption      string
}

// Store is the SQL implementation of ports.ContentSlotRepository.
type Store struct {
	pool         Pool
	dialect      Dialect
	slotsTable   string
	optionsTable string
	q            queries
	logger       *slog.Logger
	metrics      *Metrics
	tracer       trace.Tracer

	// readBatch caps the ids bound into one read-many query.
	readBatch int
}

// New creates a Store. The tables are expected to exist, see EnsureSchema.
func New(cfg Config) (*Store, error) {
	if cfg.Pool == nil {
		return nil, errors.New("sqlstore: pool is required")
	}

	if cfg.Dialect.Name() == "" {
		return nil, fmt.Errorf("sqlstore: %w: dialect not set", ErrUnknownDialect)
	}

	if cfg.TablePrefix != "" && !tablePrefixPattern.MatchString(cfg.TablePrefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTablePrefix, cfg.TablePrefix)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		pool:         cfg.Pool,
		dialect:      cfg.Dialect,
		slotsTable:   cfg.TablePrefix + "contentslots",
		optionsTable: cfg.TablePrefix + "contentslot_options",
		logger:       logger.With(slog.String("component", "sqlstore.Store")),
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer(instrumentationName),
		readBatch:    defaultReadBatch,
	}

	s.q = s.buildQueries()

	return s, nil
}

func (s *Store) buildQueries() queries {
	d := s.dialect

	// Unchanged rows are excluded in SQL so the affected count means "changed"
	// on every engine, whatever the driver's found-rows setting.
	updateSlot := "UPDATE " + s.slotsTable +
		" SET view_id = ?, component_type = ?, column_start = ?, row_start = ?, column_end = ?, row_end = ?" +
		" WHERE id = ?" +
		" AND NOT (view_id = ? AND component_type = ? AND column_start = ? AND row_start = ? AND column_end = ? AND row_end = ?)"
	updateOption := "UPDATE " + s.optionsTable + " SET value = ? WHERE contentslot_id = ? AND name = ? AND value <> ?"

	return queries{
		insertSlot: "INSERT INTO " + s.slotsTable +
			" (view_id, component_type, column_start, row_start, column_end, row_end) VALUES (?, ?, ?, ?, ?, ?)",
		deleteSlot:        d.Rebind("DELETE FROM " + s.slotsTable + " WHERE id = ?"),
		selectByID:        d.Rebind("SELECT " + slotColumns + " FROM " + s.slotsTable + " WHERE id = ?"),
		selectByView:      d.Rebind("SELECT " + slotColumns + " FROM " + s.slotsTable + " WHERE view_id = ? ORDER BY id"),
		selectByComponent: d.Rebind("SELECT " + slotColumns + " FROM " + s.slotsTable + " WHERE component_type = ? ORDER BY id"),
		updateSlot:        d.Rebind(updateSlot),
		slotExists:        d.Rebind("SELECT 1 FROM " + s.slotsTable + " WHERE id = ?"),
		selectOptions:     d.Rebind("SELECT name, value FROM " + s.optionsTable + " WHERE contentslot_id = ?"),
		insertOption:      d.Rebind("INSERT INTO " + s.optionsTable + " (contentslot_id, name, value) VALUES (?, ?, ?)"),
		updateOption:      d.Rebind(updateOption),
		deleteOption:      d.Rebind("DELETE FROM " + s.optionsTable + " WHERE contentslot_id = ? AND name = ?"),
	}
}

// Create inserts a slot and its options and returns the assigned id.
func (s *Store) Create(ctx context.Context, slot domain.ContentSlot) (int64, error) {
	var id int64

	err := s.withConn(ctx, opCreate, func(ctx context.Context, conn Conn) error {
		var err error

		id, err = s.dialect.insertReturningID(ctx, conn, s.q.insertSlot,
			slot.ViewID, slot.ComponentType, slot.ColumnStart, slot.RowStart, slot.ColumnEnd, slot.RowEnd)
		if err != nil {
			return fmt.Errorf("inserting slot: %w", err)
		}

		if _, err := s.synchronize(ctx, conn, id, slot.Options); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// DeleteOne removes the slot with the given id. found is false when no row matched.
func (s *Store) DeleteOne(ctx context.Context, id int64) (int64, bool, error) {
	var found bool

	err := s.withConn(ctx, opDeleteOne, func(ctx context.Context, conn Conn) error {
		res, err := conn.ExecContext(ctx, s.q.deleteSlot, id)
		if err != nil {
			return fmt.Errorf("deleting slot %d: %w", id, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		}

		found = affected == 1

		return nil
	})
	if err != nil || !found {
		return 0, false, err
	}

	return id, true, nil
}

// GetByID returns one slot with its options.
func (s *Store) GetByID(ctx context.Context, id int64) (domain.ContentSlot, bool, error) {
	var (
		slot  domain.ContentSlot
		found bool
	)

	err := s.withConn(ctx, opGetByID, func(ctx context.Context, conn Conn) error {
		row, err := scanSlotRow(conn.QueryRowContext(ctx, s.q.selectByID, id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("querying slot %d: %w", id, err)
		}

		opts, err := s.readOne(ctx, conn, id)
		if err != nil {
			return err
		}

		slot = rowToObjectWithOptions(row, opts)
		found = true

		return nil
	})
	if err != nil {
		return domain.ContentSlot{}, false, err
	}

	return slot, found, nil
}

// GetByViewID returns every slot of a view with its options, ordered by id.
// Options of all slots are fetched with one query.
func (s *Store) GetByViewID(ctx context.Context, viewID int64) ([]domain.ContentSlot, error) {
	slots := []domain.ContentSlot{}

	err := s.withConn(ctx, opGetByViewID, func(ctx context.Context, conn Conn) error {
		rows, err := s.querySlots(ctx, conn, s.q.selectByView, viewID)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		ids := make([]int64, len(rows))
		for i, r := range rows {
			ids[i] = r.id
		}

		byID, err := s.readMany(ctx, conn, ids)
		if err != nil {
			return err
		}

		for _, r := range rows {
			slots = append(slots, rowToObjectWithOptions(r, byID[r.id]))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return slots, nil
}

// GetByComponentType returns the slots rendering componentType. Options are
// not loaded: every returned slot carries an empty map.
func (s *Store) GetByComponentType(ctx context.Context, componentType string) ([]domain.ContentSlot, error) {
	slots := []domain.ContentSlot{}

	err := s.withConn(ctx, opGetByComponentType, func(ctx context.Context, conn Conn) error {
		rows, err := s.querySlots(ctx, conn, s.q.selectByComponent, componentType)
		if err != nil {
			return err
		}

		for _, r := range rows {
			slots = append(slots, rowToObject(r))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return slots, nil
}

// Update writes the scalar fields of slot.ID and reconciles its options.
// found is true when the row or the option set changed. A missing slot is
// reported as not found and its option rows are left alone.
func (s *Store) Update(ctx context.Context, slot domain.ContentSlot) (int64, bool, error) {
	var found bool

	err := s.withConn(ctx, opUpdate, func(ctx context.Context, conn Conn) error {
		fields := []any{slot.ViewID, slot.ComponentType, slot.ColumnStart, slot.RowStart, slot.ColumnEnd, slot.RowEnd}
		args := append(append(slices.Clone(fields), slot.ID), fields...)

		res, err := conn.ExecContext(ctx, s.q.updateSlot, args...)
		if err != nil {
			return fmt.Errorf("updating slot %d: %w", slot.ID, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		}

		rowChanged := affected > 0

		if !rowChanged {
			exists, err := s.exists(ctx, conn, slot.ID)
			if err != nil {
				return err
			}

			if !exists {
				return nil
			}
		}

		optionsChanged, err := s.synchronize(ctx, conn, slot.ID, slot.Options)
		if err != nil {
			return err
		}

		found = rowChanged || optionsChanged

		return nil
	})
	if err != nil || !found {
		return 0, false, err
	}

	return slot.ID, true, nil
}

func (s *Store) exists(ctx context.Context, conn Conn, id int64) (bool, error) {
	var one int

	err := conn.QueryRowContext(ctx, s.q.slotExists, id).Scan(&one)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("probing slot %d: %w", id, err)
	default:
		return true, nil
	}
}

func (s *Store) querySlots(ctx context.Context, conn Conn, query string, arg any) ([]slotRow, error) {
	rows, err := conn.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying slots: %w", err)
	}
	defer rows.Close()

	var out []slotRow

	for rows.Next() {
		r, err := scanSlotRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating slots: %w", err)
	}

	return out, nil
}

// withConn runs fn on a freshly acquired connection and releases it on every
// exit path before the classified error is returned.
func (s *Store) withConn(ctx context.Context, op string, fn func(ctx context.Context, conn Conn) error) (err error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "sqlstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemNameKey.String(s.dialect.Name()),
			semconv.DBOperationName(op),
			semconv.DBCollectionName(s.slotsTable),
		),
	)

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
		s.metrics.observe(op, err, time.Since(start))
	}()

	conn, acquireErr := s.pool.Acquire(ctx)
	if acquireErr != nil {
		s.metrics.acquireFailed(acquireErr)

		return s.classify(op, acquireErr)
	}

	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			s.logger.WarnContext(ctx, "releasing connection",
				slog.String("operation", op),
				slog.Any("error", closeErr),
			)
		}
	}()

	if fnErr := fn(ctx, conn); fnErr != nil {
		return s.classify(op, fnErr)
	}

	return nil
}

// classify turns a driver failure into a domain error. Domain errors pass through.
func (s *Store) classify(op string, err error) error {
	var (
		dupErr     *domain.DuplicateEntryError
		storageErr *domain.StorageError
	)

	if errors.As(err, &dupErr) || errors.As(err, &storageErr) {
		return err
	}

	code := s.dialect.ErrorCode(err)

	if s.dialect.IsDuplicate(err) {
		return domain.NewDuplicateEntryError(entityContentSlot, code, err)
	}

	return domain.NewStorageError(op, code, err)
}
