package teacherapp

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillspear/skillspear/core"
)

// Status of a teacher application. Transitions are forward only:
// pending -> accepted | rejected.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application is a request by an account to be granted the teacher role,
// subject to admin approval.
type Application struct {
	ID             string    `json:"id"`
	ApplicantEmail string    `json:"applicant_email"`
	ApplicantName  string    `json:"applicant_name"`
	Title          string    `json:"title,omitempty"`
	Category       string    `json:"category,omitempty"`
	Experience     string    `json:"experience,omitempty"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"` // UTC
}

// NewApplication contains information needed to submit a teacher application.
type NewApplication struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Experience string `json:"experience"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Name = core.CleanString(na.Name)
	na.Title = core.CleanString(na.Title)
	na.Category = core.CleanString(na.Category)
	na.Experience = core.CleanString(na.Experience)
	return validate.Struct(na)
}

// SubmitResult is the outcome of a submission. Re-submitting while an
// application is still active is not an error; it short-circuits with an
// informational message and no new record.
type SubmitResult struct {
	Application Application `json:"application"`
	Created     bool        `json:"created"`
	Message     string      `json:"message,omitempty"`
}

// AcceptResult reports the two writes an acceptance performs: the
// application status flip and the role cascade on the owning account.
type AcceptResult struct {
	Application Application `json:"application"`
	RoleUpdated bool        `json:"role_updated"`
}
