package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals a wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrEmailNotVerified blocks login until the OTP flow completes.
	ErrEmailNotVerified = errors.New("auth: email not verified")
)

// adminSubjectID is the synthetic principal id for the configured admin
// account; admins have no database row.
const adminSubjectID = "admin"

type codeStore interface {
	Generate(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, code string) error
}

type mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AdminCredentials is the configured administrator login.
type AdminCredentials struct {
	Email    string
	Password string
}

// Service handles donor registration, email verification, and logins.
type Service struct {
	repo   Repository
	tokens *Tokens
	codes  codeStore
	mail   mailer
	admin  AdminCredentials
	logger *zap.Logger
}

func NewService(repo Repository, tokens *Tokens, codes codeStore, mail mailer, admin AdminCredentials, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		codes:  codes,
		mail:   mail,
		admin:  admin,
		logger: logger,
	}
}

// Register creates a donor account and emails a verification code.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	code, err := s.codes.Generate(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Hello %s,\n\nYour NGO Connect verification code is %s. It expires in 10 minutes.", user.Name, code)
	if err := s.mail.Send(ctx, user.Email, "Verify your email", body); err != nil {
		s.logger.Warn("verification email failed", zap.String("email", user.Email), zap.Error(err))
	}

	return user, nil
}

// VerifyEmail consumes the OTP and activates the account.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := s.codes.Consume(ctx, req.Email, req.Code); err != nil {
		return err
	}
	return s.repo.MarkEmailVerified(ctx, user.ID)
}

// Login authenticates a donor and returns a signed token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return LoginResult{}, ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(user.ID.String(), RoleDonor)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

// LoginAdmin checks the configured administrator credentials.
func (s *Service) LoginAdmin(ctx context.Context, req LoginRequest) (string, error) {
	if s.admin.Email == "" || s.admin.Password == "" {
		return "", ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.admin.Password)) == 1
	if !emailOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(adminSubjectID, RoleAdmin)
}

// GetUser returns a donor profile.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.repo.GetUserByID(ctx, uid)
}

// ListUsers returns all donor accounts. Admin screens only.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}
