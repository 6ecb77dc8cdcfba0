package payment

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
)

// fakeLedger is an in-memory ledger that mirrors the additivity the real
// repository provides: every appended contribution grows the aggregate.
type fakeLedger struct {
	mu            sync.Mutex
	campaigns     map[uuid.UUID]*campaign.Campaign
	contributions []campaign.Contribution
}

func newFakeLedger(ids ...uuid.UUID) *fakeLedger {
	l := &fakeLedger{campaigns: make(map[uuid.UUID]*campaign.Campaign)}
	for _, id := range ids {
		l.campaigns[id] = &campaign.Campaign{ID: id}
	}
	return l
}

func (l *fakeLedger) GetByID(ctx context.Context, id uuid.UUID) (*campaign.Campaign, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.campaigns[id]
	if !ok {
		return nil, campaign.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (l *fakeLedger) AppendContribution(ctx context.Context, campaignID uuid.UUID, contrib *campaign.Contribution) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.campaigns[campaignID]
	if !ok {
		return campaign.ErrNotFound
	}
	contrib.CampaignID = campaignID
	l.contributions = append(l.contributions, *contrib)
	c.AmountCollected += contrib.Amount
	return nil
}

type fakeGateway struct {
	orders int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, receipt string, notes map[string]string) (*Order, error) {
	g.orders++
	return &Order{ID: "order_test", Amount: amount * 100, Currency: "INR", Receipt: receipt}, nil
}

func TestConfirm_ValidSignature(t *testing.T) {
	campaignID := uuid.New()
	donorID := uuid.New()
	ledger := newFakeLedger(campaignID)
	svc := NewService(ledger, &fakeGateway{}, "secret", zap.NewNop())

	sig := ComputeSignature([]byte("secret"), "order_1", "pay_1")
	contrib, err := svc.Confirm(context.Background(), ConfirmParams{
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  sig,
		CampaignID: campaignID,
		DonorID:    donorID,
		Amount:     500,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), contrib.Amount)
	assert.Equal(t, "pay_1", contrib.PaymentRef)

	c, err := ledger.GetByID(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), c.AmountCollected)
	assert.Len(t, ledger.contributions, 1)
}

func TestConfirm_InvalidSignatureMutatesNothing(t *testing.T) {
	campaignID := uuid.New()
	ledger := newFakeLedger(campaignID)
	svc := NewService(ledger, &fakeGateway{}, "secret", zap.NewNop())

	_, err := svc.Confirm(context.Background(), ConfirmParams{
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  "not-a-real-signature",
		CampaignID: campaignID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)

	c, err := ledger.GetByID(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Zero(t, c.AmountCollected)
	assert.Empty(t, ledger.contributions)
}

func TestConfirm_SignedWithWrongSecret(t *testing.T) {
	campaignID := uuid.New()
	ledger := newFakeLedger(campaignID)
	svc := NewService(ledger, &fakeGateway{}, "secret", zap.NewNop())

	sig := ComputeSignature([]byte("attacker-secret"), "order_1", "pay_1")
	_, err := svc.Confirm(context.Background(), ConfirmParams{
		OrderID:    "order_1",
		PaymentID:  "pay_1",
		Signature:  sig,
		CampaignID: campaignID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, ledger.contributions)
}

func TestConfirm_ConcurrentContributionsAreAdditive(t *testing.T) {
	campaignID := uuid.New()
	ledger := newFakeLedger(campaignID)
	svc := NewService(ledger, &fakeGateway{}, "secret", zap.NewNop())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			orderID := uuid.NewString()
			paymentID := uuid.NewString()
			_, err := svc.Confirm(context.Background(), ConfirmParams{
				OrderID:    orderID,
				PaymentID:  paymentID,
				Signature:  ComputeSignature([]byte("secret"), orderID, paymentID),
				CampaignID: campaignID,
				DonorID:    uuid.New(),
				Amount:     10,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	c, err := ledger.GetByID(context.Background(), campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(10*n), c.AmountCollected)
	assert.Len(t, ledger.contributions, n)
}

func TestCreateOrder(t *testing.T) {
	campaignID := uuid.New()
	gw := &fakeGateway{}
	svc := NewService(newFakeLedger(campaignID), gw, "secret", zap.NewNop())

	order, err := svc.CreateOrder(context.Background(), campaignID, uuid.New(), 250)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), order.Amount)
	assert.Equal(t, 1, gw.orders)

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := svc.CreateOrder(context.Background(), campaignID, uuid.New(), 0)
		assert.Error(t, err)
		assert.Equal(t, 1, gw.orders)
	})

	t.Run("rejects unknown campaign", func(t *testing.T) {
		_, err := svc.CreateOrder(context.Background(), uuid.New(), uuid.New(), 100)
		assert.ErrorIs(t, err, campaign.ErrNotFound)
	})
}
