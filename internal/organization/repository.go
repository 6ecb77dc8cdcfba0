package organization

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no organization matches.
	ErrNotFound = errors.New("organization: not found")
	// ErrEmailTaken signals a registration against an existing address.
	ErrEmailTaken = errors.New("organization: email already registered")
	// ErrStatusConflict signals the status changed underneath a transition;
	// the caller lost a compare-and-set race or used a stale status.
	ErrStatusConflict = errors.New("organization: verification status changed concurrently")
)

// Repository handles organization persistence.
type Repository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	GetByEmail(ctx context.Context, email string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	// SubmitDetails overwrites the verification details and moves the status
	// from the observed value to PendingReview in one statement.
	SubmitDetails(ctx context.Context, id uuid.UUID, from VerificationStatus, details VerificationDetails) error
	// TransitionStatus applies a compare-and-set status change.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to VerificationStatus) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	// TotalWithdrawn reads the organization's cumulative withdrawn amount.
	TotalWithdrawn(ctx context.Context, id uuid.UUID) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, org *Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("organization: create: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	var org Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("organization: get: %w", err)
	}
	return &org, nil
}

func (r *gormRepository) GetByEmail(ctx context.Context, email string) (*Organization, error) {
	var org Organization
	if err := r.db.WithContext(ctx).First(&org, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("organization: get by email: %w", err)
	}
	return &org, nil
}

func (r *gormRepository) List(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("organization: list: %w", err)
	}
	return orgs, nil
}

func (r *gormRepository) SubmitDetails(ctx context.Context, id uuid.UUID, from VerificationStatus, details VerificationDetails) error {
	res := r.db.WithContext(ctx).Model(&Organization{}).
		Where("id = ? AND verification_status = ?", id, from).
		Updates(map[string]interface{}{
			"verification_status":     StatusPendingReview,
			"kyc_account_holder_name": details.AccountHolderName,
			"kyc_account_number":      details.AccountNumber,
			"kyc_ifsc_code":           details.IFSCCode,
			"kyc_document_type":       details.DocumentType,
			"kyc_document_key":        details.DocumentKey,
		})
	if res.Error != nil {
		return fmt.Errorf("organization: submit details: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *gormRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&Organization{}).Where("id = ?", id).
		UpdateColumn("email_verified", true)
	if res.Error != nil {
		return fmt.Errorf("organization: mark verified: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) TotalWithdrawn(ctx context.Context, id uuid.UUID) (int64, error) {
	var org Organization
	if err := r.db.WithContext(ctx).Select("total_withdrawn").First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("organization: total withdrawn: %w", err)
	}
	return org.TotalWithdrawn, nil
}

func (r *gormRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to VerificationStatus) error {
	res := r.db.WithContext(ctx).Model(&Organization{}).
		Where("id = ? AND verification_status = ?", id, from).
		UpdateColumn("verification_status", to)
	if res.Error != nil {
		return fmt.Errorf("organization: transition status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
