package withdrawal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/ledger"
)

// Notifier delivers outcome emails. Delivery is best effort and never
// affects the state transition that triggered it.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	repo     Repository
	balances *ledger.Calculator
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, balances *ledger.Calculator, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{repo: repo, balances: balances, notifier: notifier, logger: logger}
}

// Request creates a pending withdrawal for the organization's full
// available balance. All invariant checks run inside the repository
// transaction.
func (s *Service) Request(ctx context.Context, orgID uuid.UUID) (*WithdrawalRequest, error) {
	req, err := s.repo.Create(ctx, orgID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("withdrawal requested",
		zap.String("request_id", req.ID.String()),
		zap.String("organization_id", orgID.String()),
		zap.Int64("amount", req.Amount))
	return req, nil
}

// Approve settles the request, debits the organization, and emails the
// organization after the transaction commits.
func (s *Service) Approve(ctx context.Context, requestID uuid.UUID) (*WithdrawalRequest, error) {
	res, err := s.repo.Approve(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("withdrawal approved",
		zap.String("request_id", requestID.String()),
		zap.Int64("amount", res.Request.Amount))
	s.notify(ctx, res, "Withdrawal approved",
		fmt.Sprintf("Your withdrawal request for Rs. %d has been approved and will be transferred to the bank account on record.", res.Request.Amount))
	return res.Request, nil
}

// Reject settles the request without touching the organization's balance.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID) (*WithdrawalRequest, error) {
	res, err := s.repo.Reject(ctx, requestID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("withdrawal rejected", zap.String("request_id", requestID.String()))
	s.notify(ctx, res, "Withdrawal rejected",
		fmt.Sprintf("Your withdrawal request for Rs. %d has been rejected. The funds remain available for a new request.", res.Request.Amount))
	return res.Request, nil
}

// notify sends after the state change is durable. A detached context with a
// short timeout so a cancelled request cannot abort delivery, and a failed
// delivery cannot undo the settlement.
func (s *Service) notify(ctx context.Context, res *ApprovalResult, subject, body string) {
	if s.notifier == nil || res.Organization.Email == "" {
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.notifier.Send(sendCtx, res.Organization.Email, subject, body); err != nil {
		s.logger.Warn("withdrawal notification failed",
			zap.String("request_id", res.Request.ID.String()),
			zap.Error(err))
	}
}

// Balance reports the organization's current available balance.
func (s *Service) Balance(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.balances.AvailableBalance(ctx, orgID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]WithdrawalRequest, error) {
	return s.repo.ListByOrganization(ctx, orgID)
}

func (s *Service) ListPending(ctx context.Context) ([]WithdrawalRequest, error) {
	return s.repo.ListPending(ctx)
}
