package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillspear/skillspear/core"
)

// ApprovalStatus of a course offering. Only approved offerings are
// publicly listed and purchasable.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Offering is a purchasable course listed by a teacher. EnrolledCount is
// derived from the payment ledger and mutated only through the ledger's
// atomic increment.
type Offering struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	OwnerEmail     string         `json:"owner_email"`
	OwnerName      string         `json:"owner_name"`
	Description    string         `json:"description,omitempty"`
	Image          string         `json:"image,omitempty"`
	Price          int64          `json:"price"` // minor currency units
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	EnrolledCount  int            `json:"enrolled_count"`
	CreatedAt      time.Time      `json:"created_at"` // UTC
}

// NewOffering contains information needed to list a new course offering.
type NewOffering struct {
	Title       string `json:"title" validate:"required"`
	OwnerEmail  string `json:"owner_email" validate:"required,email"`
	OwnerName   string `json:"owner_name" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       int64  `json:"price" validate:"gte=0"`
}

func (no *NewOffering) Validate(validate *validator.Validate) error {
	no.Title = core.CleanString(no.Title)
	no.OwnerEmail = core.CleanString(no.OwnerEmail, true /* lower */)
	no.OwnerName = core.CleanString(no.OwnerName)
	no.Description = core.CleanString(no.Description)
	return validate.Struct(no)
}
