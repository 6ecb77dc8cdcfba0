package campaign

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a fundraising post owned by one organization. AmountRequired
// is fixed at creation; AmountCollected only ever grows, and always equals
// the sum of the campaign's contributions.
type Campaign struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID  uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `gorm:"not null" json:"description"`
	ImageKey        string    `gorm:"not null" json:"image_key"`
	AmountRequired  int64     `gorm:"not null" json:"amount_required"`
	AmountCollected int64     `gorm:"not null;default:0" json:"amount_collected"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Contribution is an append-only ledger entry. Rows are never updated or
// deleted.
type Contribution struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CampaignID    uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`
	ContributorID uuid.UUID `gorm:"type:uuid;not null" json:"contributor_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	PaymentRef    string    `gorm:"not null" json:"payment_ref"`
	CreatedAt     time.Time `json:"created_at"`
}

// Comment is a donor or organization comment on a campaign.
type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CampaignID uuid.UUID `gorm:"type:uuid;not null;index" json:"campaign_id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	AuthorName string    `gorm:"not null" json:"author_name"`
	Text       string    `gorm:"not null" json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRequest carries the form fields of a new campaign; the image file
// arrives alongside as multipart content.
type CreateRequest struct {
	Title          string `form:"title" binding:"required,max=255"`
	Description    string `form:"description" binding:"required"`
	AmountRequired int64  `form:"amount_required" binding:"required,gt=0"`
}

// CommentRequest is the payload for a new comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}
