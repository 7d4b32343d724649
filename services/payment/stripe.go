package paymentsvc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/skillspear/skillspear/core"
)

type stripeService struct {
	api *client.API
}

var _ core.PaymentService = (*stripeService)(nil)

func NewStripeService(conf *core.Config) core.PaymentService {
	api := &client.API{}
	api.Init(conf.StripeSecretKey, nil)
	return &stripeService{api: api}
}

func (svc *stripeService) CreateIntent(ctx context.Context, amount int64) (core.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	pi, err := svc.api.PaymentIntents.New(params)
	if err != nil {
		return core.PaymentIntent{}, errors.Wrap(err, "creating stripe payment intent")
	}
	return core.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
