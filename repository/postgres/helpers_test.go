package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tracker/domain"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want func(t *testing.T, got error)
	}{
		{
			name: "nil",
			err:  nil,
			want: func(t *testing.T, got error) { assert.NoError(t, got) },
		},
		{
			name: "no rows",
			err:  fmt.Errorf("scan: %w", pgx.ErrNoRows),
			want: func(t *testing.T, got error) { assert.ErrorIs(t, got, domain.ErrTaskNotFound) },
		},
		{
			name: "foreign key",
			err:  &pgconn.PgError{Code: codeForeignKeyViolation},
			want: func(t *testing.T, got error) { assert.ErrorIs(t, got, domain.ErrTaskNotFound) },
		},
		{
			name: "unique",
			err:  &pgconn.PgError{Code: codeUniqueViolation},
			want: func(t *testing.T, got error) {
				assert.True(t, domain.IsDomainError(got, domain.ErrCodeConflict))
			},
		},
		{
			name: "passthrough",
			err:  other,
			want: func(t *testing.T, got error) { assert.Same(t, other, got) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, translate(tt.err, domain.ErrTaskNotFound))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 100, clampLimit(0))
	assert.Equal(t, 100, clampLimit(500))
	assert.Equal(t, 25, clampLimit(25))
}

func TestMarshalMap(t *testing.T) {
	assert.Nil(t, marshalMap(nil))
	assert.JSONEq(t, `{"team":"core"}`, string(marshalMap(map[string]string{"team": "core"})))
}
