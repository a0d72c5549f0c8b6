package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/jsamuelsen/contentslots/internal/domain"

	// Drivers register themselves with database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Supported dialect names, as accepted by configuration.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Diagnostic codes for failures that do not come from the storage engine.
const (
	CodePoolTimeout = domain.StorageCodePoolTimeout
	CodeCircuitOpen = domain.StorageCodeCircuitOpen
	CodeCanceled    = "CANCELED"
	CodeUnknown     = "UNKNOWN"
)

const (
	mysqlDuplicateEntry    = 1062
	postgresUniqueViolated = "23505"
)

// ErrUnknownDialect is returned for a driver name the store cannot speak.
var ErrUnknownDialect = errors.New("unknown sql dialect")

// Dialect captures what differs between the supported engines: driver
// registration name, placeholder style, how inserted ids come back, and error
// codes.
type Dialect struct {
	name       string
	driverName string

	// numbered placeholders ($1, $2, ...) instead of '?'.
	numbered bool

	// returning fetches inserted ids with RETURNING instead of LastInsertId.
	returning bool
}

// DialectFor returns the dialect for a configured driver name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case DialectMySQL:
		return Dialect{name: DialectMySQL, driverName: "mysql"}, nil
	case DialectPostgres, "postgresql", "pgx":
		return Dialect{name: DialectPostgres, driverName: "pgx", numbered: true, returning: true}, nil
	case DialectSQLite, "sqlite3":
		return Dialect{name: DialectSQLite, driverName: "sqlite"}, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

// Name returns the canonical dialect name.
func (d Dialect) Name() string {
	return d.name
}

// DriverName returns the database/sql driver registration name.
func (d Dialect) DriverName() string {
	return d.driverName
}

// Rebind rewrites '?' placeholders into the dialect's style.
// Queries built by this package never contain '?' inside literals.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder

	b.Grow(len(query) + 8)

	n := 0

	for _, r := range query {
		if r == '?' {
			n++

			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))

			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

// insertReturningID runs an INSERT and returns the storage-assigned id.
func (d Dialect) insertReturningID(ctx context.Context, conn Conn, query string, args ...any) (int64, error) {
	if d.returning {
		var id int64

		err := conn.QueryRowContext(ctx, d.Rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, err
		}

		return id, nil
	}

	res, err := conn.ExecContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ErrorCode extracts the engine's diagnostic code from a driver error.
// Context cancellation maps to CodeCanceled; anything unrecognised to CodeUnknown.
func (d Dialect) ErrorCode(err error) string {
	var (
		mysqlErr  *mysql.MySQLError
		pgErr     *pgconn.PgError
		sqliteErr *msqlite.Error
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &mysqlErr):
		return strconv.Itoa(int(mysqlErr.Number))
	case errors.As(err, &pgErr):
		return pgErr.Code
	case errors.As(err, &sqliteErr):
		return strconv.Itoa(sqliteErr.Code())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled
	default:
		return CodeUnknown
	}
}

// IsDuplicate reports whether err is the engine's duplicate-key signal.
func (d Dialect) IsDuplicate(err error) bool {
	var (
		mysqlErr  *mysql.MySQLError
		pgErr     *pgconn.PgError
		sqliteErr *msqlite.Error
	)

	switch {
	case errors.As(err, &mysqlErr):
		return mysqlErr.Number == mysqlDuplicateEntry
	case errors.As(err, &pgErr):
		return pgErr.Code == postgresUniqueViolated
	case errors.As(err, &sqliteErr):
		code := sqliteErr.Code()
		return code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
	default:
		return false
	}
}
