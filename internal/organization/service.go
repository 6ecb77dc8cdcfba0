package organization

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
)

var (
	// ErrInvalidCredentials signals a wrong email or password.
	ErrInvalidCredentials = errors.New("organization: invalid credentials")
	// ErrEmailNotVerified blocks login until the OTP flow completes.
	ErrEmailNotVerified = errors.New("organization: email not verified")
)

type uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type codeStore interface {
	Generate(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, code string) error
}

type mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service handles organization accounts and the verification registry.
type Service struct {
	repo    Repository
	tokens  *auth.Tokens
	storage uploader
	codes   codeStore
	mail    mailer
	logger  *zap.Logger
}

func NewService(repo Repository, tokens *auth.Tokens, storage uploader, codes codeStore, mail mailer, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		tokens:  tokens,
		storage: storage,
		codes:   codes,
		mail:    mail,
		logger:  logger,
	}
}

// Register creates an organization account and emails a verification code.
// New accounts start Unverified.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Organization, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("organization: hash password: %w", err)
	}

	org := &Organization{
		Name:               req.Name,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Description:        req.Description,
		Address:            req.Address,
		VerificationStatus: StatusUnverified,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	code, err := s.codes.Generate(ctx, org.Email)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("Hello %s,\n\nYour NGO Connect verification code is %s. It expires in 10 minutes.", org.Name, code)
	if err := s.mail.Send(ctx, org.Email, "Verify your email", body); err != nil {
		s.logger.Warn("verification email failed", zap.String("email", org.Email), zap.Error(err))
	}

	return org, nil
}

// VerifyEmail consumes the OTP and activates the account.
func (s *Service) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	org, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := s.codes.Consume(ctx, req.Email, req.Code); err != nil {
		return err
	}
	return s.repo.MarkEmailVerified(ctx, org.ID)
}

// Login authenticates an organization and returns a signed token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, *Organization, error) {
	org, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(org.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !org.EmailVerified {
		return "", nil, ErrEmailNotVerified
	}
	token, err := s.tokens.Issue(org.ID.String(), auth.RoleOrganization)
	if err != nil {
		return "", nil, err
	}
	return token, org, nil
}

// Get returns an organization by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all organizations. Admin screens only.
func (s *Service) List(ctx context.Context) ([]Organization, error) {
	return s.repo.List(ctx)
}

// SubmitVerification stores the supporting document, overwrites the bank
// details, and moves the organization to PendingReview. Allowed only from
// Unverified or Rejected.
func (s *Service) SubmitVerification(ctx context.Context, orgID uuid.UUID, req SubmitVerificationRequest, document io.Reader, filename, contentType string) (*Organization, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(org.VerificationStatus, StatusPendingReview) {
		return nil, ErrInvalidTransition
	}

	key := fmt.Sprintf("kyc/%s/%d%s", orgID, time.Now().UnixNano(), path.Ext(filename))
	if err := s.storage.Upload(ctx, key, document, contentType); err != nil {
		return nil, fmt.Errorf("organization: upload document: %w", err)
	}

	details := VerificationDetails{
		AccountHolderName: req.AccountHolderName,
		AccountNumber:     req.AccountNumber,
		IFSCCode:          req.IFSCCode,
		DocumentType:      req.DocumentType,
		DocumentKey:       key,
	}
	if err := s.repo.SubmitDetails(ctx, orgID, org.VerificationStatus, details); err != nil {
		// The document was already stored; don't leave it orphaned.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("kyc document cleanup failed",
				zap.String("organization_id", orgID.String()),
				zap.String("document_key", key),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("verification submitted",
		zap.String("organization_id", orgID.String()),
		zap.String("document_key", key))

	return s.repo.GetByID(ctx, orgID)
}

// Verify marks a pending organization as Verified. Administrator action.
func (s *Service) Verify(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	return s.transition(ctx, orgID, StatusVerified)
}

// RejectVerification marks a pending organization as Rejected; it may
// resubmit later. Administrator action.
func (s *Service) RejectVerification(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	return s.transition(ctx, orgID, StatusRejected)
}

// Revoke moves a verified organization back to Unverified, cutting off new
// withdrawal requests until it passes review again. Administrator action.
func (s *Service) Revoke(ctx context.Context, orgID uuid.UUID) (*Organization, error) {
	return s.transition(ctx, orgID, StatusUnverified)
}

func (s *Service) transition(ctx context.Context, orgID uuid.UUID, to VerificationStatus) (*Organization, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(org.VerificationStatus, to) {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.TransitionStatus(ctx, orgID, org.VerificationStatus, to); err != nil {
		return nil, err
	}

	s.logger.Info("verification status changed",
		zap.String("organization_id", orgID.String()),
		zap.String("from", string(org.VerificationStatus)),
		zap.String("to", string(to)))

	return s.repo.GetByID(ctx, orgID)
}

// DocumentURL returns a short-lived link to the submitted KYC document.
func (s *Service) DocumentURL(ctx context.Context, orgID uuid.UUID) (string, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return "", err
	}
	if org.Details.DocumentKey == "" {
		return "", ErrNotFound
	}
	return s.storage.PresignedURL(ctx, org.Details.DocumentKey, 15*time.Minute)
}
