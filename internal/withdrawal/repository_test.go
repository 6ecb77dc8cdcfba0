package withdrawal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateInsertError(t *testing.T) {
	t.Run("unique violation becomes already pending", func(t *testing.T) {
		err := translateInsertError(&pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, err, ErrAlreadyPending)
	})

	t.Run("wrapped unique violation", func(t *testing.T) {
		wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
		assert.ErrorIs(t, translateInsertError(wrapped), ErrAlreadyPending)
	})

	t.Run("other pg errors pass through wrapped", func(t *testing.T) {
		err := translateInsertError(&pgconn.PgError{Code: "23503"})
		assert.NotErrorIs(t, err, ErrAlreadyPending)
		var pgErr *pgconn.PgError
		assert.True(t, errors.As(err, &pgErr))
	})

	t.Run("non-pg errors pass through wrapped", func(t *testing.T) {
		boom := errors.New("connection reset")
		err := translateInsertError(boom)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrAlreadyPending)
	})
}
