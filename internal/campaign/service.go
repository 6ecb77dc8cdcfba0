package campaign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ngo-connect/donation-portal/donation-portal-backend/internal/auth"
)

var (
	// ErrNotOwner signals an organization acting on a campaign it does not
	// own.
	ErrNotOwner = errors.New("campaign: not owned by caller")
	// ErrHasContributions blocks deleting a funded campaign. Removing the
	// row would drop its collected amount from the organization's balance
	// while total_withdrawn keeps counting the money, leaving the ledger
	// permanently negative.
	ErrHasContributions = errors.New("campaign: campaign has recorded contributions")
)

type uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// NameResolver maps an authenticated principal to a display name for
// comments.
type NameResolver interface {
	ResolveName(ctx context.Context, principal auth.Principal) (string, error)
}

// Service handles campaign CRUD and comments. Contribution writes go
// through the payment confirmation gate, never through here directly.
type Service struct {
	repo    Repository
	storage uploader
	names   NameResolver
	logger  *zap.Logger
}

func NewService(repo Repository, storage uploader, names NameResolver, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storage,
		names:   names,
		logger:  logger,
	}
}

// Create stores the campaign image and creates the campaign for the
// organization.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req CreateRequest, image io.Reader, filename, contentType string) (*Campaign, error) {
	key := fmt.Sprintf("campaigns/%s/%d%s", orgID, time.Now().UnixNano(), path.Ext(filename))
	if err := s.storage.Upload(ctx, key, image, contentType); err != nil {
		return nil, fmt.Errorf("campaign: upload image: %w", err)
	}

	c := &Campaign{
		OrganizationID: orgID,
		Title:          req.Title,
		Description:    req.Description,
		ImageKey:       key,
		AmountRequired: req.AmountRequired,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a campaign by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all campaigns, newest first.
func (s *Service) List(ctx context.Context) ([]Campaign, error) {
	return s.repo.List(ctx)
}

// ListByOrganization returns the organization's own campaigns.
func (s *Service) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Campaign, error) {
	return s.repo.ListByOrganization(ctx, orgID)
}

// Delete removes a campaign. Only the owning organization may delete it.
// The stored image is removed best-effort.
func (s *Service) Delete(ctx context.Context, id, callerOrgID uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OrganizationID != callerOrgID {
		return ErrNotOwner
	}
	if c.AmountCollected > 0 {
		return ErrHasContributions
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, c.ImageKey); err != nil {
		s.logger.Warn("campaign image cleanup failed",
			zap.String("campaign_id", id.String()), zap.Error(err))
	}
	return nil
}

// ImageURL returns a short-lived link to the campaign image.
func (s *Service) ImageURL(ctx context.Context, id uuid.UUID) (string, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.storage.PresignedURL(ctx, c.ImageKey, time.Hour)
}

// ListContributions returns the campaign's ledger entries in append order.
func (s *Service) ListContributions(ctx context.Context, campaignID uuid.UUID) ([]Contribution, error) {
	if _, err := s.repo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListContributions(ctx, campaignID)
}

// AddComment attaches a comment by the authenticated principal.
func (s *Service) AddComment(ctx context.Context, campaignID uuid.UUID, principal auth.Principal, req CommentRequest) (*Comment, error) {
	if _, err := s.repo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	authorID, err := uuid.Parse(principal.ID)
	if err != nil {
		return nil, fmt.Errorf("campaign: invalid author id: %w", err)
	}
	name, err := s.names.ResolveName(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("campaign: resolve author name: %w", err)
	}

	comment := &Comment{
		CampaignID: campaignID,
		AuthorID:   authorID,
		AuthorName: name,
		Text:       req.Text,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a campaign's comments in posting order.
func (s *Service) ListComments(ctx context.Context, campaignID uuid.UUID) ([]Comment, error) {
	if _, err := s.repo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, campaignID)
}
