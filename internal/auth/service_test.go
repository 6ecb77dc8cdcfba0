package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]User), args.Error(1)
}

type stubCodes struct {
	code       string
	consumeErr error
	consumed   []string
}

func (s *stubCodes) Generate(ctx context.Context, email string) (string, error) {
	return s.code, nil
}

func (s *stubCodes) Consume(ctx context.Context, email, code string) error {
	if s.consumeErr != nil {
		return s.consumeErr
	}
	s.consumed = append(s.consumed, email)
	return nil
}

type stubMailer struct {
	sent []string
	err  error
}

func (s *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	s.sent = append(s.sent, to)
	return s.err
}

func newTestService(repo Repository, codes codeStore, mail mailer, admin AdminCredentials) *Service {
	return NewService(repo, NewTokens("test-secret", time.Hour), codes, mail, admin, zap.NewNop())
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *User) bool {
		return u.Email == "donor@example.org" && u.PasswordHash != "hunter22"
	})).Return(nil)
	mail := &stubMailer{}

	svc := newTestService(repo, &stubCodes{code: "123456"}, mail, AdminCredentials{})
	user, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Asha", Email: "donor@example.org", Password: "hunter22",
	})
	require.NoError(t, err)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, []string{"donor@example.org"}, mail.sent)
	repo.AssertExpectations(t)
}

func TestRegister_EmailFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(repo, &stubCodes{code: "123456"}, &stubMailer{err: errors.New("ses down")}, AdminCredentials{})
	_, err := svc.Register(context.Background(), RegisterRequest{
		Name: "Asha", Email: "donor@example.org", Password: "hunter22",
	})
	assert.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, "donor@example.org").
		Return(&User{ID: userID, Email: "donor@example.org"}, nil)
	repo.On("MarkEmailVerified", mock.Anything, userID).Return(nil)
	codes := &stubCodes{}

	svc := newTestService(repo, codes, &stubMailer{}, AdminCredentials{})
	err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{Email: "donor@example.org", Code: "123456"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestVerifyEmail_BadCode(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).
		Return(&User{ID: uuid.New()}, nil)

	svc := newTestService(repo, &stubCodes{consumeErr: ErrCodeExpired}, &stubMailer{}, AdminCredentials{})
	err := svc.VerifyEmail(context.Background(), VerifyEmailRequest{Email: "donor@example.org", Code: "000000"})
	assert.ErrorIs(t, err, ErrCodeExpired)
	repo.AssertNotCalled(t, "MarkEmailVerified", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	userID := uuid.New()
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, "donor@example.org").
		Return(&User{ID: userID, Email: "donor@example.org", PasswordHash: hashOf(t, "hunter22"), EmailVerified: true}, nil)

	svc := newTestService(repo, &stubCodes{}, &stubMailer{}, AdminCredentials{})
	result, err := svc.Login(context.Background(), LoginRequest{Email: "donor@example.org", Password: "hunter22"})
	require.NoError(t, err)

	principal, err := NewTokens("test-secret", time.Hour).Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), principal.ID)
	assert.Equal(t, RoleDonor, principal.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).
		Return(&User{PasswordHash: hashOf(t, "hunter22"), EmailVerified: true}, nil)

	svc := newTestService(repo, &stubCodes{}, &stubMailer{}, AdminCredentials{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "donor@example.org", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, ErrUserNotFound)

	svc := newTestService(repo, &stubCodes{}, &stubMailer{}, AdminCredentials{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.org", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnverifiedEmail(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).
		Return(&User{PasswordHash: hashOf(t, "hunter22"), EmailVerified: false}, nil)

	svc := newTestService(repo, &stubCodes{}, &stubMailer{}, AdminCredentials{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "donor@example.org", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLoginAdmin(t *testing.T) {
	admin := AdminCredentials{Email: "admin@example.org", Password: "s3cret"}
	svc := newTestService(new(MockRepository), &stubCodes{}, &stubMailer{}, admin)

	token, err := svc.LoginAdmin(context.Background(), LoginRequest{Email: admin.Email, Password: admin.Password})
	require.NoError(t, err)
	principal, err := NewTokens("test-secret", time.Hour).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, principal.Role)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.LoginAdmin(context.Background(), LoginRequest{Email: admin.Email, Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unconfigured admin", func(t *testing.T) {
		svc := newTestService(new(MockRepository), &stubCodes{}, &stubMailer{}, AdminCredentials{})
		_, err := svc.LoginAdmin(context.Background(), LoginRequest{Email: "", Password: ""})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
