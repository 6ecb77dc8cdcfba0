package campaign

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no campaign matches.
var ErrNotFound = errors.New("campaign: not found")

// Repository handles campaign and contribution persistence.
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Campaign, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// AppendContribution inserts the contribution and increments the
	// campaign's collected total in one transaction, serialized on the
	// campaign row.
	AppendContribution(ctx context.Context, campaignID uuid.UUID, contrib *Contribution) error
	ListContributions(ctx context.Context, campaignID uuid.UUID) ([]Contribution, error)
	// SumCollectedByOrganization totals amount_collected across the
	// organization's campaigns.
	SumCollectedByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error)
	// FindLedgerMismatches reports campaigns whose collected total disagrees
	// with the sum of their contributions.
	FindLedgerMismatches(ctx context.Context) ([]LedgerMismatch, error)

	AddComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, campaignID uuid.UUID) ([]Comment, error)
}

// LedgerMismatch describes a campaign failing the additivity invariant.
type LedgerMismatch struct {
	CampaignID      uuid.UUID `json:"campaign_id"`
	AmountCollected int64     `json:"amount_collected"`
	ContributionSum int64     `json:"contribution_sum"`
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, c *Campaign) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("campaign: create: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Campaign, error) {
	var c Campaign
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("campaign: get: %w", err)
	}
	return &c, nil
}

func (r *gormRepository) List(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("campaign: list: %w", err)
	}
	return campaigns, nil
}

func (r *gormRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Campaign, error) {
	var campaigns []Campaign
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).
		Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("campaign: list by organization: %w", err)
	}
	return campaigns, nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&Campaign{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("campaign: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) AppendContribution(ctx context.Context, campaignID uuid.UUID, contrib *Contribution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Campaign
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", campaignID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("campaign: lock for contribution: %w", err)
		}

		contrib.CampaignID = campaignID
		if err := tx.Create(contrib).Error; err != nil {
			return fmt.Errorf("campaign: insert contribution: %w", err)
		}

		// SQL-side increment so concurrent appends compose instead of
		// overwriting each other.
		if err := tx.Model(&Campaign{}).Where("id = ?", campaignID).
			UpdateColumn("amount_collected", gorm.Expr("amount_collected + ?", contrib.Amount)).Error; err != nil {
			return fmt.Errorf("campaign: increment collected: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) ListContributions(ctx context.Context, campaignID uuid.UUID) ([]Contribution, error) {
	var contribs []Contribution
	if err := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID).
		Order("created_at ASC").Find(&contribs).Error; err != nil {
		return nil, fmt.Errorf("campaign: list contributions: %w", err)
	}
	return contribs, nil
}

func (r *gormRepository) SumCollectedByOrganization(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Campaign{}).
		Where("organization_id = ?", orgID).
		Select("COALESCE(SUM(amount_collected), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("campaign: sum collected: %w", err)
	}
	return total, nil
}

func (r *gormRepository) FindLedgerMismatches(ctx context.Context) ([]LedgerMismatch, error) {
	var mismatches []LedgerMismatch
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS campaign_id,
		       c.amount_collected,
		       COALESCE(SUM(t.amount), 0) AS contribution_sum
		FROM campaigns c
		LEFT JOIN contributions t ON t.campaign_id = c.id
		GROUP BY c.id, c.amount_collected
		HAVING c.amount_collected <> COALESCE(SUM(t.amount), 0)`).
		Scan(&mismatches).Error
	if err != nil {
		return nil, fmt.Errorf("campaign: find ledger mismatches: %w", err)
	}
	return mismatches, nil
}

func (r *gormRepository) AddComment(ctx context.Context, comment *Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("campaign: add comment: %w", err)
	}
	return nil
}

func (r *gormRepository) ListComments(ctx context.Context, campaignID uuid.UUID) ([]Comment, error) {
	var comments []Comment
	if err := r.db.WithContext(ctx).Where("campaign_id = ?", campaignID).
		Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("campaign: list comments: %w", err)
	}
	return comments, nil
}
