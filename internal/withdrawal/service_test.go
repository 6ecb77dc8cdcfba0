package withdrawal

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/organization"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, orgID uuid.UUID) (*WithdrawalRequest, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WithdrawalRequest), args.Error(1)
}

func (m *MockRepository) Approve(ctx context.Context, requestID uuid.UUID) (*ApprovalResult, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ApprovalResult), args.Error(1)
}

func (m *MockRepository) Reject(ctx context.Context, requestID uuid.UUID) (*ApprovalResult, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ApprovalResult), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WithdrawalRequest), args.Error(1)
}

func (m *MockRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]WithdrawalRequest, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]WithdrawalRequest), args.Error(1)
}

func (m *MockRepository) ListPending(ctx context.Context) ([]WithdrawalRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]WithdrawalRequest), args.Error(1)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to)
	return n.err
}

func TestRequest(t *testing.T) {
	orgID := uuid.New()
	want := &WithdrawalRequest{ID: uuid.New(), OrganizationID: orgID, Amount: 500, Status: StatusPending}

	repo := new(MockRepository)
	repo.On("Create", mock.Anything, orgID).Return(want, nil)

	svc := NewService(repo, nil, nil, zap.NewNop())
	got, err := svc.Request(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestRequest_InvariantErrorsPassThrough(t *testing.T) {
	for _, sentinel := range []error{ErrVerificationRequired, ErrAlreadyPending, ErrNoFundsAvailable} {
		repo := new(MockRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil, sentinel)

		svc := NewService(repo, nil, nil, zap.NewNop())
		_, err := svc.Request(context.Background(), uuid.New())
		assert.ErrorIs(t, err, sentinel)
	}
}

func TestApprove_NotifiesOrganization(t *testing.T) {
	requestID := uuid.New()
	result := &ApprovalResult{
		Request:      &WithdrawalRequest{ID: requestID, Amount: 500, Status: StatusApproved},
		Organization: &organization.Organization{Email: "ngo@example.org"},
	}

	repo := new(MockRepository)
	repo.On("Approve", mock.Anything, requestID).Return(result, nil)
	notifier := &recordingNotifier{}

	svc := NewService(repo, nil, notifier, zap.NewNop())
	req, err := svc.Approve(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, []string{"ngo@example.org"}, notifier.sent)
}

func TestApprove_NotificationFailureDoesNotFail(t *testing.T) {
	requestID := uuid.New()
	result := &ApprovalResult{
		Request:      &WithdrawalRequest{ID: requestID, Amount: 500, Status: StatusApproved},
		Organization: &organization.Organization{Email: "ngo@example.org"},
	}

	repo := new(MockRepository)
	repo.On("Approve", mock.Anything, requestID).Return(result, nil)
	notifier := &recordingNotifier{err: errors.New("ses throttled")}

	svc := NewService(repo, nil, notifier, zap.NewNop())
	_, err := svc.Approve(context.Background(), requestID)
	assert.NoError(t, err)
}

func TestApprove_SettledRequest(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Approve", mock.Anything, mock.Anything).Return(nil, ErrNotPending)
	notifier := &recordingNotifier{}

	svc := NewService(repo, nil, notifier, zap.NewNop())
	_, err := svc.Approve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Empty(t, notifier.sent)
}

func TestReject_NotifiesWithoutDebiting(t *testing.T) {
	requestID := uuid.New()
	result := &ApprovalResult{
		Request:      &WithdrawalRequest{ID: requestID, Amount: 300, Status: StatusRejected},
		Organization: &organization.Organization{Email: "ngo@example.org", TotalWithdrawn: 0},
	}

	repo := new(MockRepository)
	repo.On("Reject", mock.Anything, requestID).Return(result, nil)
	notifier := &recordingNotifier{}

	svc := NewService(repo, nil, notifier, zap.NewNop())
	req, err := svc.Reject(context.Background(), requestID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, req.Status)
	assert.Zero(t, result.Organization.TotalWithdrawn)
	assert.Len(t, notifier.sent, 1)
}
