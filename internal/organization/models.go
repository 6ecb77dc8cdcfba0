package organization

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the KYC state of an organization. Transitions are
// validated against the table in status.go; nothing else may mutate it.
type VerificationStatus string

const (
	StatusUnverified    VerificationStatus = "Unverified"
	StatusPendingReview VerificationStatus = "PendingReview"
	StatusVerified      VerificationStatus = "Verified"
	StatusRejected      VerificationStatus = "Rejected"
)

// VerificationDetails holds the bank routing info and document reference
// submitted for review. A value copy of the bank fields is frozen into each
// withdrawal request at creation time.
type VerificationDetails struct {
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	DocumentType      string `json:"document_type"`
	DocumentKey       string `json:"document_key"`
}

// Organization represents an NGO account
type Organization struct {
	ID                 uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name               string              `gorm:"not null" json:"name"`
	Email              string              `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash       string              `gorm:"not null" json:"-"`
	EmailVerified      bool                `gorm:"not null;default:false" json:"email_verified"`
	Description        string              `gorm:"not null" json:"description"`
	Address            string              `json:"address"`
	VerificationStatus VerificationStatus  `gorm:"not null;default:'Unverified'" json:"verification_status"`
	Details            VerificationDetails `gorm:"embedded;embeddedPrefix:kyc_" json:"verification_details"`
	TotalWithdrawn     int64               `gorm:"not null;default:0" json:"total_withdrawn"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// RegisterRequest is the organization signup payload
type RegisterRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Description string `json:"description" binding:"required"`
	Address     string `json:"address"`
}

// LoginRequest is the organization login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailRequest carries the OTP issued at registration
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// SubmitVerificationRequest carries the bank details of a KYC submission.
// The document itself arrives as a multipart file alongside these fields.
type SubmitVerificationRequest struct {
	AccountHolderName string `form:"account_holder_name" binding:"required"`
	AccountNumber     string `form:"account_number" binding:"required"`
	IFSCCode          string `form:"ifsc_code" binding:"required"`
	DocumentType      string `form:"document_type" binding:"required"`
}
