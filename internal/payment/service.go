package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
)

// ErrInvalidSignature is returned for any callback whose HMAC does not
// match. The caller learns nothing about why.
var ErrInvalidSignature = errors.New("payment: invalid signature")

// Ledger is the slice of the campaign repository the confirmation gate
// writes through.
type Ledger interface {
	GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error)
	AppendContribution(ctx context.Context, campaignID uuid.UUID, contrib *campaign.Contribution) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]string) (*Order, error)
}

// ConfirmParams is a gateway payment callback.
type ConfirmParams struct {
	OrderID    string
	PaymentID  string
	Signature  string
	CampaignID uuid.UUID
	DonorID    uuid.UUID
	Amount     int64
}

// Service is the payment confirmation gate: it validates gateway callbacks
// and is the only entry point that mutates the campaign ledger.
type Service struct {
	ledger  Ledger
	gateway orderCreator
	secret  []byte
	logger  *zap.Logger
}

func NewService(ledger Ledger, gateway orderCreator, secret string, logger *zap.Logger) *Service {
	return &Service{
		ledger:  ledger,
		gateway: gateway,
		secret:  []byte(secret),
		logger:  logger,
	}
}

// CreateOrder opens a gateway order for a donation to the campaign.
func (s *Service) CreateOrder(ctx context.Context, campaignID, donorID uuid.UUID, amount int64) (*Order, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment: amount must be positive")
	}
	if _, err := s.ledger.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("donation_%s", uuid.NewString())
	order, err := s.gateway.CreateOrder(ctx, amount, receipt, map[string]string{
		"campaign_id": campaignID.String(),
		"donor_id":    donorID.String(),
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Confirm validates the callback signature and, only on an exact match,
// appends the contribution to the ledger. A failed check mutates nothing.
func (s *Service) Confirm(ctx context.Context, params ConfirmParams) (*campaign.Contribution, error) {
	if !VerifySignature(s.secret, params.OrderID, params.PaymentID, params.Signature) {
		s.logger.Warn("payment signature rejected",
			zap.String("order_id", params.OrderID),
			zap.String("campaign_id", params.CampaignID.String()))
		return nil, ErrInvalidSignature
	}

	contrib := &campaign.Contribution{
		ContributorID: params.DonorID,
		Amount:        params.Amount,
		PaymentRef:    params.PaymentID,
	}
	if err := s.ledger.AppendContribution(ctx, params.CampaignID, contrib); err != nil {
		return nil, err
	}

	s.logger.Info("contribution recorded",
		zap.String("campaign_id", params.CampaignID.String()),
		zap.String("payment_ref", params.PaymentID),
		zap.Int64("amount", params.Amount))

	return contrib, nil
}
