package core

import "context"

type (
	// PaymentIntent is a charge handle obtained from the payment gateway.
	// The client secret is handed to the frontend to complete the charge.
	PaymentIntent struct {
		ID           string
		ClientSecret string
	}

	// PaymentService abstracts the external payment gateway. Amounts are
	// expressed in minor currency units (cents).
	PaymentService interface {
		CreateIntent(ctx context.Context, amount int64) (PaymentIntent, error)
	}
)
