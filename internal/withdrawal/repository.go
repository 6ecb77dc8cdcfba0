package withdrawal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ngo-connect/donation-portal/donation-portal-backend/internal/campaign"
	"ngo-connect/donation-portal/donation-portal-backend/internal/ledger"
	"ngo-connect/donation-portal/donation-portal-backend/internal/organization"
)

var (
	// ErrNotFound is returned when no withdrawal request matches.
	ErrNotFound = errors.New("withdrawal: request not found")
	// ErrNotPending signals an approve/reject on a settled request.
	ErrNotPending = errors.New("withdrawal: request is not pending")
	// ErrAlreadyPending signals the organization already has a request in
	// flight.
	ErrAlreadyPending = errors.New("withdrawal: a pending request already exists")
	// ErrVerificationRequired gates creation on KYC approval.
	ErrVerificationRequired = errors.New("withdrawal: organization is not verified")
	// ErrNoFundsAvailable signals a zero available balance.
	ErrNoFundsAvailable = errors.New("withdrawal: no funds available")
)

// ApprovalResult carries the settled request together with the owning
// organization so callers can notify without another lookup.
type ApprovalResult struct {
	Request      *WithdrawalRequest
	Organization *organization.Organization
}

// Repository implements the three atomic withdrawal operations plus reads.
// Create, Approve, and Reject each run in a single transaction with the
// affected rows locked; the invariants live here, at the storage layer.
type Repository interface {
	Create(ctx context.Context, orgID uuid.UUID) (*WithdrawalRequest, error)
	Approve(ctx context.Context, requestID uuid.UUID) (*ApprovalResult, error)
	Reject(ctx context.Context, requestID uuid.UUID) (*ApprovalResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]WithdrawalRequest, error)
	ListPending(ctx context.Context) ([]WithdrawalRequest, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Create runs the full authorization sequence under a lock on the
// organization row: verified KYC, no pending request, positive balance.
// The inserted amount is the balance computed inside the same transaction.
func (r *gormRepository) Create(ctx context.Context, orgID uuid.UUID) (*WithdrawalRequest, error) {
	var req *WithdrawalRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org organization.Organization
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&org, "id = ?", orgID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return organization.ErrNotFound
			}
			return fmt.Errorf("withdrawal: lock organization: %w", err)
		}

		if org.VerificationStatus != organization.StatusVerified {
			return ErrVerificationRequired
		}

		var pending int64
		if err := tx.Model(&WithdrawalRequest{}).
			Where("organization_id = ? AND status = ?", orgID, StatusPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("withdrawal: count pending: %w", err)
		}
		if pending > 0 {
			return ErrAlreadyPending
		}

		var collected int64
		if err := tx.Model(&campaign.Campaign{}).
			Where("organization_id = ?", orgID).
			Select("COALESCE(SUM(amount_collected), 0)").
			Scan(&collected).Error; err != nil {
			return fmt.Errorf("withdrawal: sum collected: %w", err)
		}

		balance := collected - org.TotalWithdrawn
		if balance < 0 {
			return fmt.Errorf("%w: collected %d < withdrawn %d", ledger.ErrInconsistent, collected, org.TotalWithdrawn)
		}
		if balance == 0 {
			return ErrNoFundsAvailable
		}

		snapshot, err := json.Marshal(BankDetails{
			AccountHolderName: org.Details.AccountHolderName,
			AccountNumber:     org.Details.AccountNumber,
			IFSCCode:          org.Details.IFSCCode,
		})
		if err != nil {
			return fmt.Errorf("withdrawal: snapshot bank details: %w", err)
		}

		req = &WithdrawalRequest{
			OrganizationID:   orgID,
			OrganizationName: org.Name,
			Amount:           balance,
			Status:           StatusPending,
			BankDetails:      datatypes.JSON(snapshot),
		}
		if err := tx.Create(req).Error; err != nil {
			return translateInsertError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// translateInsertError maps the partial-unique-index violation onto
// ErrAlreadyPending. The index fires when two creates race past the in-tx
// pending count.
func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyPending
	}
	return fmt.Errorf("withdrawal: insert request: %w", err)
}

// Approve settles the request and increments the organization's withdrawn
// total in the same transaction.
func (r *gormRepository) Approve(ctx context.Context, requestID uuid.UUID) (*ApprovalResult, error) {
	return r.settle(ctx, requestID, StatusApproved, true)
}

// Reject settles the request with no balance mutation.
func (r *gormRepository) Reject(ctx context.Context, requestID uuid.UUID) (*ApprovalResult, error) {
	return r.settle(ctx, requestID, StatusRejected, false)
}

func (r *gormRepository) settle(ctx context.Context, requestID uuid.UUID, to Status, incrementWithdrawn bool) (*ApprovalResult, error) {
	var result ApprovalResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req WithdrawalRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("withdrawal: lock request: %w", err)
		}

		if !CanTransition(req.Status, to) {
			return ErrNotPending
		}

		if err := tx.Model(&WithdrawalRequest{}).Where("id = ?", requestID).
			UpdateColumn("status", to).Error; err != nil {
			return fmt.Errorf("withdrawal: update status: %w", err)
		}

		if incrementWithdrawn {
			// SQL-side increment; concurrent approvals for the same
			// organization compose instead of overwriting.
			res := tx.Model(&organization.Organization{}).
				Where("id = ?", req.OrganizationID).
				UpdateColumn("total_withdrawn", gorm.Expr("total_withdrawn + ?", req.Amount))
			if res.Error != nil {
				return fmt.Errorf("withdrawal: increment withdrawn: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return organization.ErrNotFound
			}
		}

		var org organization.Organization
		if err := tx.First(&org, "id = ?", req.OrganizationID).Error; err != nil {
			return fmt.Errorf("withdrawal: load organization: %w", err)
		}

		req.Status = to
		result.Request = &req
		result.Organization = &org
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*WithdrawalRequest, error) {
	var req WithdrawalRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("withdrawal: get: %w", err)
	}
	return &req, nil
}

func (r *gormRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]WithdrawalRequest, error) {
	var reqs []WithdrawalRequest
	if err := r.db.WithContext(ctx).Where("organization_id = ?", orgID).
		Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("withdrawal: list by organization: %w", err)
	}
	return reqs, nil
}

func (r *gormRepository) ListPending(ctx context.Context) ([]WithdrawalRequest, error) {
	var reqs []WithdrawalRequest
	if err := r.db.WithContext(ctx).Where("status = ?", StatusPending).
		Order("created_at ASC").Find(&reqs).Error; err != nil {
		return nil, fmt.Errorf("withdrawal: list pending: %w", err)
	}
	return reqs, nil
}
