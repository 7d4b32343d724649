package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillspear/skillspear/core"
)

// Payment is an immutable record of a completed purchase of a course
// offering. The payment ledger is append-only and is the source of truth
// for enrollment counters.
type Payment struct {
	ID               string    `json:"id"`
	PayerEmail       string    `json:"payer_email"`
	CourseOfferingID string    `json:"course_offering_id"`
	Amount           int64     `json:"amount"` // minor currency units
	TransactionID    string    `json:"transaction_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"` // UTC
}

// NewPayment contains information needed to record a completed payment.
type NewPayment struct {
	PayerEmail       string `json:"payer_email" validate:"required,email"`
	CourseOfferingID string `json:"course_offering_id" validate:"required"`
	Amount           int64  `json:"amount" validate:"gte=0"`
	TransactionID    string `json:"transaction_id"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PayerEmail = core.CleanString(np.PayerEmail, true /* lower */)
	np.CourseOfferingID = core.CleanString(np.CourseOfferingID)
	np.TransactionID = core.CleanString(np.TransactionID)
	return validate.Struct(np)
}

// NewIntent contains information needed to obtain a charge handle from
// the payment gateway.
type NewIntent struct {
	Price int64 `json:"price" validate:"gte=0"`
}

func (ni *NewIntent) Validate(validate *validator.Validate) error {
	return validate.Struct(ni)
}

// Intent is the response to a charge-handle request.
type Intent struct {
	ClientSecret string `json:"client_secret"`
}
