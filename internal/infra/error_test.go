//go:build unit

package infra_test

import (
	"errors"
	"fmt"
	"testing"

	"affiliate-notify/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapRepoErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind []infra.RepositoryErrorKind
		want infra.RepositoryErrorKind
	}{
		{name: "plain failure", err: errors.New("connection reset"), want: infra.KindDBFailure},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: infra.KindDuplicateKey},
		{name: "foreign key violation", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), want: infra.KindForeignKeyViolated},
		{name: "no rows", err: pgx.ErrNoRows, want: infra.KindNotFound},
		{name: "explicit kind wins", err: errors.New("stale"), kind: []infra.RepositoryErrorKind{infra.KindConflict}, want: infra.KindConflict},
		{name: "nil cause", err: nil, kind: []infra.RepositoryErrorKind{infra.KindNotFound}, want: infra.KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := infra.WrapRepoErr("operation failed", tc.err, tc.kind...)

			assert.True(t, infra.IsKind(err, tc.want))
			assert.Contains(t, err.Error(), "operation failed")
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestIsKind(t *testing.T) {
	assert.False(t, infra.IsKind(errors.New("plain"), infra.KindNotFound))
	wrapped := fmt.Errorf("outer: %w", infra.WrapRepoErr("x", nil, infra.KindConflict))
	assert.True(t, infra.IsKind(wrapped, infra.KindConflict))
}
