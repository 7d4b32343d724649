package inmemdb

import (
	"context"

	"github.com/skillspear/skillspear/core/enrollment"
)

type paymentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) enrollment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.payments = append(repo.db.payments, &p)
	return p, nil
}

func (repo *paymentRepository) QueryPaymentsByPayer(_ context.Context, payerEmail string) ([]enrollment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var payments []enrollment.Payment
	for i := len(repo.db.payments) - 1; i >= 0; i-- {
		if p := repo.db.payments[i]; p.PayerEmail == payerEmail {
			payments = append(payments, *p)
		}
	}
	return payments, nil
}

func (repo *paymentRepository) CountPaymentsByOffering(_ context.Context, offeringID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.countByOffering(offeringID), nil
}

func (repo *paymentRepository) RecountEnrollments(_ context.Context) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var changed int
	for _, off := range repo.db.offerings {
		if n := repo.db.countByOffering(off.ID); n != off.EnrolledCount {
			off.EnrolledCount = n
			changed++
		}
	}
	return changed, nil
}

// countByOffering expects the caller to hold the lock.
func (db *DB) countByOffering(offeringID string) int {
	var n int
	for _, p := range db.payments {
		if p.CourseOfferingID == offeringID {
			n++
		}
	}
	return n
}
