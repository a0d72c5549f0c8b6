package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		input      string
		wantName   string
		wantDriver string
		wantErr    bool
	}{
		{input: "mysql", wantName: DialectMySQL, wantDriver: "mysql"},
		{input: "postgres", wantName: DialectPostgres, wantDriver: "pgx"},
		{input: "PostgreSQL", wantName: DialectPostgres, wantDriver: "pgx"},
		{input: "pgx", wantName: DialectPostgres, wantDriver: "pgx"},
		{input: " sqlite ", wantName: DialectSQLite, wantDriver: "sqlite"},
		{input: "sqlite3", wantName: DialectSQLite, wantDriver: "sqlite"},
		{input: "oracle", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := DialectFor(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownDialect)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, d.Name())
			assert.Equal(t, tt.wantDriver, d.DriverName())
		})
	}
}

func TestDialect_Rebind(t *testing.T) {
	query := "UPDATE t SET a = ? WHERE b = ? AND c IN (?, ?)"

	mysqlDialect, err := DialectFor(DialectMySQL)
	require.NoError(t, err)
	assert.Equal(t, query, mysqlDialect.Rebind(query))

	sqliteDialect, err := DialectFor(DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, query, sqliteDialect.Rebind(query))

	pg, err := DialectFor(DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2 AND c IN ($3, $4)", pg.Rebind(query))
}

func TestDialect_ErrorCodeAndDuplicate(t *testing.T) {
	d, err := DialectFor(DialectMySQL)
	require.NoError(t, err)

	tests := []struct {
		name     string
		err      error
		wantCode string
		wantDup  bool
	}{
		{
			name:     "mysql duplicate entry",
			err:      &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-1-1' for key 'cell'"},
			wantCode: "1062",
			wantDup:  true,
		},
		{
			name:     "mysql wrapped duplicate entry",
			err:      fmt.Errorf("inserting slot: %w", &mysql.MySQLError{Number: 1062}),
			wantCode: "1062",
			wantDup:  true,
		},
		{
			name:     "mysql syntax error",
			err:      &mysql.MySQLError{Number: 1064},
			wantCode: "1064",
		},
		{
			name:     "postgres unique violation",
			err:      &pgconn.PgError{Code: "23505"},
			wantCode: "23505",
			wantDup:  true,
		},
		{
			name:     "postgres foreign key violation",
			err:      &pgconn.PgError{Code: "23503"},
			wantCode: "23503",
		},
		{
			name:     "context canceled",
			err:      fmt.Errorf("querying: %w", context.Canceled),
			wantCode: CodeCanceled,
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantCode: CodeCanceled,
		},
		{
			name:     "unrecognised",
			err:      errors.New("connection reset by peer"),
			wantCode: CodeUnknown,
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, d.ErrorCode(tt.err))
			assert.Equal(t, tt.wantDup, d.IsDuplicate(tt.err))
		})
	}
}

func TestSanitizeDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "postgres url",
			dsn:  "postgres://app:s3cret@db:5432/slots?sslmode=disable",
			want: "postgres://***@db:5432/slots?sslmode=disable",
		},
		{
			name: "postgres keyword form",
			dsn:  "host=db user=app password=s3cret dbname=slots",
			want: "host=db user=app password=*** dbname=slots",
		},
		{
			name: "mysql",
			dsn:  "app:s3cret@tcp(db:3306)/slots?parseTime=true",
			want: "***@tcp(db:3306)/slots?parseTime=true",
		},
		{
			name: "sqlite file",
			dsn:  "file:/var/lib/slots.db?_pragma=foreign_keys(1)",
			want: "file:/var/lib/slots.db?_pragma=foreign_keys(1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDSN(tt.dsn))
		})
	}
}
