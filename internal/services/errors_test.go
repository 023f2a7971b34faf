package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: true},
		{name: "wrapped gorm duplicated key", err: fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres not null violation", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "mysql duplicate entry", err: &mysql.MySQLError{Number: 1062}, want: true},
		{name: "mysql other error", err: &mysql.MySQLError{Number: 1048}, want: false},
		{name: "sqlite unique violation", err: errors.New("UNIQUE constraint failed: notifications.calendar_entry_id"), want: true},
		{name: "sqlite not null violation", err: errors.New("NOT NULL constraint failed: notifications.title"), want: false},
		{name: "sqlite check violation", err: errors.New("CHECK constraint failed: notifications"), want: false},
		{name: "sqlite foreign key violation", err: errors.New("FOREIGN KEY constraint failed"), want: false},
		{name: "unrelated error", err: errors.New("disk I/O error"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, isUniqueConstraintError(tc.err))
		})
	}
}
