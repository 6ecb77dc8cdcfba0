package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the kind of principal behind a request.
type Role string

const (
	RoleDonor        Role = "donor"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// Principal is the authenticated identity attached to every request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// User represents a donor account
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash  string    `gorm:"not null" json:"-"`
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RegisterRequest is the donor registration payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the login payload shared by donors and admins
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailRequest carries the OTP issued at registration
type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// LoginResult bundles the token and the account returned after login.
type LoginResult struct {
	Token string
	User  *User
}
