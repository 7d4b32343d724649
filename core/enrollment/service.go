package enrollment

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/course"
)

var (
	// errors
	ErrGatewayUnavailable = stderrors.New("payment gateway unavailable")
)

type (
	Repository interface {
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		QueryPaymentsByPayer(ctx context.Context, payerEmail string) ([]Payment, error)
		CountPaymentsByOffering(ctx context.Context, offeringID string) (int, error)
		// RecountEnrollments rewrites every offering's enrolled counter
		// from the payment ledger and returns the number of offerings
		// whose counter changed.
		RecountEnrollments(ctx context.Context) (int, error)
	}

	Service struct {
		repo    Repository
		catalog course.Repository
		gateway core.PaymentService
		logger  core.Logger
	}
)

func NewService(repo Repository, catalog course.Repository, gateway core.PaymentService, logger core.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, gateway: gateway, logger: logger}
}

// CreateIntent obtains a charge handle for price from the payment gateway.
// Pure pass-through; no local state.
func (svc *Service) CreateIntent(ctx context.Context, price int64) (Intent, error) {
	pi, err := svc.gateway.CreateIntent(ctx, price)
	if err != nil {
		return Intent{}, errors.Wrap(ErrGatewayUnavailable, err.Error())
	}
	return Intent{ClientSecret: pi.ClientSecret}, nil
}

// Record appends a payment to the ledger, then bumps the offering's
// enrolled counter with a single atomic store-level increment. The ledger
// is the source of truth: a counter-write failure after the append is
// logged and repaired later by Recount, never surfaced as a lost payment.
func (svc *Service) Record(ctx context.Context, np NewPayment) (Payment, error) {
	if _, err := svc.catalog.GetOfferingByID(ctx, np.CourseOfferingID); err != nil {
		return Payment{}, err
	}

	p, err := svc.repo.CreatePayment(ctx, Payment{
		ID:               uuid.NewString(),
		PayerEmail:       np.PayerEmail,
		CourseOfferingID: np.CourseOfferingID,
		Amount:           np.Amount,
		TransactionID:    np.TransactionID,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		return Payment{}, err
	}

	if _, err = svc.catalog.IncrementEnrolled(ctx, np.CourseOfferingID); err != nil {
		svc.logger.Error("enrollment counter increment failed; recount will repair it",
			errors.Wrapf(err, "incrementing enrolled count for offering %s", np.CourseOfferingID))
	}
	return p, nil
}

// ListEnrolled returns the distinct course offerings the payer has paid
// for. An offering paid for more than once appears exactly once.
func (svc *Service) ListEnrolled(ctx context.Context, payerEmail string) ([]course.Offering, error) {
	payments, err := svc.repo.QueryPaymentsByPayer(ctx, payerEmail)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(payments))
	ids := make([]string, 0, len(payments))
	for _, p := range payments {
		if !seen[p.CourseOfferingID] {
			seen[p.CourseOfferingID] = true
			ids = append(ids, p.CourseOfferingID)
		}
	}
	if len(ids) == 0 {
		return []course.Offering{}, nil
	}
	return svc.catalog.QueryOfferingsByID(ctx, ids)
}

// CountForOffering counts ledger entries referencing the offering.
func (svc *Service) CountForOffering(ctx context.Context, offeringID string) (int, error) {
	return svc.repo.CountPaymentsByOffering(ctx, offeringID)
}

// Recount recomputes every offering's enrolled counter from the ledger.
func (svc *Service) Recount(ctx context.Context) (int, error) {
	return svc.repo.RecountEnrollments(ctx)
}
