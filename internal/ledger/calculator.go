package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInconsistent signals a ledger sum disagreeing with its aggregate, or a
// negative balance. It is an integrity fault, never a user-facing
// validation error, and the triggering operation must not proceed.
var ErrInconsistent = errors.New("ledger: inconsistent state")

// CollectedSource totals the amount collected across an organization's
// campaigns.
type CollectedSource interface {
	SumCollectedByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// WithdrawnSource reports an organization's cumulative withdrawn amount.
type WithdrawnSource interface {
	TotalWithdrawn(ctx context.Context, orgID uuid.UUID) (int64, error)
}

// Calculator computes withdrawable balances. It has no side effects.
type Calculator struct {
	collected CollectedSource
	withdrawn WithdrawnSource
	logger    *zap.Logger
}

func NewCalculator(collected CollectedSource, withdrawn WithdrawnSource, logger *zap.Logger) *Calculator {
	return &Calculator{
		collected: collected,
		withdrawn: withdrawn,
		logger:    logger,
	}
}

// AvailableBalance returns collected minus withdrawn for the organization.
// A negative result is reported as ErrInconsistent, never clamped.
func (c *Calculator) AvailableBalance(ctx context.Context, orgID uuid.UUID) (int64, error) {
	collected, err := c.collected.SumCollectedByOrganization(ctx, orgID)
	if err != nil {
		return 0, err
	}
	withdrawn, err := c.withdrawn.TotalWithdrawn(ctx, orgID)
	if err != nil {
		return 0, err
	}

	balance := collected - withdrawn
	if balance < 0 {
		c.logger.Error("negative available balance",
			zap.String("organization_id", orgID.String()),
			zap.Int64("collected", collected),
			zap.Int64("withdrawn", withdrawn))
		return 0, fmt.Errorf("%w: collected %d < withdrawn %d", ErrInconsistent, collected, withdrawn)
	}
	return balance, nil
}
