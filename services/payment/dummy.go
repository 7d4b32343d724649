package paymentsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/skillspear/skillspear/core"
)

// DummyService fabricates charge handles locally. Used in DEV and TEST;
// created intents are retained for inspection.
type DummyService struct {
	mu      sync.Mutex
	intents []core.PaymentIntent

	// Err, when set, is returned by every call. Lets tests exercise
	// gateway failures.
	Err error
}

var _ core.PaymentService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{}
}

func (svc *DummyService) CreateIntent(_ context.Context, amount int64) (core.PaymentIntent, error) {
	if svc.Err != nil {
		return core.PaymentIntent{}, svc.Err
	}
	id := "pi_" + uuid.NewString()
	pi := core.PaymentIntent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%d", id, amount),
	}
	svc.mu.Lock()
	svc.intents = append(svc.intents, pi)
	svc.mu.Unlock()
	return pi, nil
}

// CreatedIntents returns a snapshot of every intent created so far.
func (svc *DummyService) CreatedIntents() []core.PaymentIntent {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	out := make([]core.PaymentIntent, len(svc.intents))
	copy(out, svc.intents)
	return out
}
