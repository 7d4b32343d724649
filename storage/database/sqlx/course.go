package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core/course"
)

type offeringRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	OwnerEmail     string    `db:"owner_email"`
	OwnerName      string    `db:"owner_name"`
	Description    string    `db:"description"`
	Image          string    `db:"image"`
	Price          int64     `db:"price"`
	ApprovalStatus string    `db:"approval_status"`
	EnrolledCount  int       `db:"enrolled_count"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r offeringRow) toDomain() course.Offering {
	return course.Offering{
		ID:             r.ID,
		Title:          r.Title,
		OwnerEmail:     r.OwnerEmail,
		OwnerName:      r.OwnerName,
		Description:    r.Description,
		Image:          r.Image,
		Price:          r.Price,
		ApprovalStatus: course.ApprovalStatus(r.ApprovalStatus),
		EnrolledCount:  r.EnrolledCount,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

const offeringColumns = "id, title, owner_email, owner_name, description, image, price, approval_status, enrolled_count, created_at"

type CourseOfferingRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*CourseOfferingRepository)(nil)

func NewCourseOfferingRepository(db *sqlx.DB) *CourseOfferingRepository {
	return &CourseOfferingRepository{db: db}
}

func (repo *CourseOfferingRepository) CreateOffering(ctx context.Context, off course.Offering) (course.Offering, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course_offering (id, title, owner_email, owner_name, description, image, price, approval_status, enrolled_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		off.ID, off.Title, off.OwnerEmail, off.OwnerName, off.Description, off.Image,
		off.Price, string(off.ApprovalStatus), off.EnrolledCount, off.CreatedAt,
	)
	if err != nil {
		return course.Offering{}, errors.Wrap(err, "inserting course offering")
	}
	return off, nil
}

func (repo *CourseOfferingRepository) GetOfferingByID(ctx context.Context, id string) (course.Offering, error) {
	var row offeringRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+offeringColumns+` FROM course_offering WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return course.Offering{}, course.ErrNotFound
	}
	if err != nil {
		return course.Offering{}, errors.Wrap(err, "selecting course offering by id")
	}
	return row.toDomain(), nil
}

func (repo *CourseOfferingRepository) QueryOfferingsByID(ctx context.Context, ids []string) ([]course.Offering, error) {
	if len(ids) == 0 {
		return []course.Offering{}, nil
	}
	query, args, err := sqlx.In(`SELECT `+offeringColumns+` FROM course_offering WHERE id IN (?) ORDER BY created_at DESC`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building offerings-by-id query")
	}
	var rows []offeringRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "selecting course offerings by id")
	}
	return toOfferings(rows), nil
}

func (repo *CourseOfferingRepository) QueryAllOfferings(ctx context.Context) ([]course.Offering, error) {
	var rows []offeringRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT `+offeringColumns+` FROM course_offering ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "selecting course offerings")
	}
	return toOfferings(rows), nil
}

func (repo *CourseOfferingRepository) QueryOfferingsByStatus(ctx context.Context, status course.ApprovalStatus) ([]course.Offering, error) {
	var rows []offeringRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+offeringColumns+` FROM course_offering WHERE approval_status = $1 ORDER BY created_at DESC`,
		string(status))
	if err != nil {
		return nil, errors.Wrap(err, "selecting course offerings by status")
	}
	return toOfferings(rows), nil
}

func (repo *CourseOfferingRepository) QueryOfferingsByOwner(ctx context.Context, ownerEmail string) ([]course.Offering, error) {
	var rows []offeringRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+offeringColumns+` FROM course_offering WHERE owner_email = $1 ORDER BY created_at DESC`,
		ownerEmail)
	if err != nil {
		return nil, errors.Wrap(err, "selecting course offerings by owner")
	}
	return toOfferings(rows), nil
}

func (repo *CourseOfferingRepository) UpdateOfferingStatus(ctx context.Context, id string, status course.ApprovalStatus) (course.Offering, error) {
	var row offeringRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE course_offering SET approval_status = $2 WHERE id = $1 RETURNING `+offeringColumns,
		id, string(status))
	if err == sql.ErrNoRows {
		return course.Offering{}, course.ErrNotFound
	}
	if err != nil {
		return course.Offering{}, errors.Wrap(err, "updating course offering status")
	}
	return row.toDomain(), nil
}

// IncrementEnrolled is the single conditional "add 1 to this field" write;
// concurrent payments against one offering serialize here instead of
// racing a read-modify-write.
func (repo *CourseOfferingRepository) IncrementEnrolled(ctx context.Context, id string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		`UPDATE course_offering SET enrolled_count = enrolled_count + 1 WHERE id = $1 RETURNING enrolled_count`, id)
	if err == sql.ErrNoRows {
		return 0, course.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "incrementing enrolled count")
	}
	return count, nil
}

func toOfferings(rows []offeringRow) []course.Offering {
	offs := make([]course.Offering, len(rows))
	for i, row := range rows {
		offs[i] = row.toDomain()
	}
	return offs
}
