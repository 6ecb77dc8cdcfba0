package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCollected struct {
	total int64
	err   error
}

func (s stubCollected) SumCollectedByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.total, s.err
}

type stubWithdrawn struct {
	total int64
	err   error
}

func (s stubWithdrawn) TotalWithdrawn(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.total, s.err
}

func TestAvailableBalance(t *testing.T) {
	tests := []struct {
		name      string
		collected int64
		withdrawn int64
		want      int64
	}{
		{"no activity", 0, 0, 0},
		{"nothing withdrawn", 500, 0, 500},
		{"partially withdrawn", 500, 300, 200},
		{"fully withdrawn", 500, 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewCalculator(stubCollected{total: tt.collected}, stubWithdrawn{total: tt.withdrawn}, zap.NewNop())
			got, err := calc.AvailableBalance(context.Background(), uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailableBalance_NegativeIsInconsistent(t *testing.T) {
	calc := NewCalculator(stubCollected{total: 100}, stubWithdrawn{total: 150}, zap.NewNop())
	_, err := calc.AvailableBalance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestAvailableBalance_SourceErrors(t *testing.T) {
	boom := errors.New("db down")

	calc := NewCalculator(stubCollected{err: boom}, stubWithdrawn{}, zap.NewNop())
	_, err := calc.AvailableBalance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)

	calc = NewCalculator(stubCollected{total: 10}, stubWithdrawn{err: boom}, zap.NewNop())
	_, err = calc.AvailableBalance(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
}
