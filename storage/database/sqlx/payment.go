package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core/enrollment"
)

type paymentRow struct {
	ID               string    `db:"id"`
	PayerEmail       string    `db:"payer_email"`
	CourseOfferingID string    `db:"course_offering_id"`
	Amount           int64     `db:"amount"`
	TransactionID    string    `db:"transaction_id"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r paymentRow) toDomain() enrollment.Payment {
	return enrollment.Payment{
		ID:               r.ID,
		PayerEmail:       r.PayerEmail,
		CourseOfferingID: r.CourseOfferingID,
		Amount:           r.Amount,
		TransactionID:    r.TransactionID,
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

const paymentColumns = "id, payer_email, course_offering_id, amount, transaction_id, created_at"

type PaymentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (repo *PaymentRepository) CreatePayment(ctx context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO payment_record (id, payer_email, course_offering_id, amount, transaction_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.PayerEmail, p.CourseOfferingID, p.Amount, p.TransactionID, p.CreatedAt,
	)
	if err != nil {
		return enrollment.Payment{}, errors.Wrap(err, "inserting payment record")
	}
	return p, nil
}

func (repo *PaymentRepository) QueryPaymentsByPayer(ctx context.Context, payerEmail string) ([]enrollment.Payment, error) {
	var rows []paymentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+paymentColumns+` FROM payment_record WHERE payer_email = $1 ORDER BY created_at DESC`,
		payerEmail)
	if err != nil {
		return nil, errors.Wrap(err, "selecting payment records by payer")
	}
	payments := make([]enrollment.Payment, len(rows))
	for i, row := range rows {
		payments[i] = row.toDomain()
	}
	return payments, nil
}

func (repo *PaymentRepository) CountPaymentsByOffering(ctx context.Context, offeringID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`SELECT count(*) FROM payment_record WHERE course_offering_id = $1`, offeringID)
	if err != nil {
		return 0, errors.Wrap(err, "counting payment records")
	}
	return count, nil
}

// RecountEnrollments rewrites drifted enrollment counters from the
// ledger. The ledger is the source of truth; the counter is a cache.
func (repo *PaymentRepository) RecountEnrollments(ctx context.Context) (int, error) {
	res, err := repo.db.ExecContext(ctx,
		`WITH counts AS (
			SELECT co.id, coalesce(pr.n, 0) AS n
			FROM course_offering co
			LEFT JOIN (
				SELECT course_offering_id, count(*) AS n
				FROM payment_record
				GROUP BY course_offering_id
			) pr ON pr.course_offering_id = co.id
		 )
		 UPDATE course_offering co
		 SET enrolled_count = counts.n
		 FROM counts
		 WHERE co.id = counts.id AND co.enrolled_count <> counts.n`)
	if err != nil {
		return 0, errors.Wrap(err, "recounting enrollments")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "reading recount result")
	}
	return int(n), nil
}
