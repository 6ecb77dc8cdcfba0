package withdrawal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Status is the state of a withdrawal request. Pending is the only
// non-terminal state; transitions are validated in status.go.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// BankDetails is the payout destination frozen into a request at creation
// time. Later KYC edits never alter a request already filed.
type BankDetails struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
}

// WithdrawalRequest asks to pay out the organization's full available
// balance at the instant of creation. The amount is always server-computed.
//
// A partial unique index on (organization_id) WHERE status = 'Pending'
// backs the at-most-one-pending invariant at the storage layer.
type WithdrawalRequest struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	OrganizationName string         `gorm:"not null" json:"organization_name"`
	Amount           int64          `gorm:"not null" json:"amount"`
	Status           Status         `gorm:"not null;default:'Pending'" json:"status"`
	BankDetails      datatypes.JSON `gorm:"type:jsonb" json:"bank_details"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
