package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
)

func TestMapErr(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{name: "no rows", err: pgx.ErrNoRows, kind: "not_found"},
		{name: "unique", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "books_isbn_key"}, kind: "conflict"},
		{name: "bad uuid", err: &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}, kind: "not_found"},
		{name: "lock timeout", err: &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, kind: "busy"},
		{name: "too long", err: &pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, ColumnName: "price"}, kind: "validation"},
		{name: "other", err: errors.New("conn reset"), kind: "internal"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.kind, errs.Kind(mapErr(tt.err)))
		})
	}
}

func TestLockTimeoutSetting(t *testing.T) {
	t.Parallel()
	require.Equal(t, "2000ms", lockTimeoutSetting(2*time.Second))
	require.Equal(t, "1ms", lockTimeoutSetting(time.Microsecond))
}
