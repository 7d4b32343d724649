package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/teacherapp"
)

type applicationRow struct {
	ID             string    `db:"id"`
	ApplicantEmail string    `db:"applicant_email"`
	ApplicantName  string    `db:"applicant_name"`
	Title          string    `db:"title"`
	Category       string    `db:"category"`
	Experience     string    `db:"experience"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r applicationRow) toDomain() teacherapp.Application {
	return teacherapp.Application{
		ID:             r.ID,
		ApplicantEmail: r.ApplicantEmail,
		ApplicantName:  r.ApplicantName,
		Title:          r.Title,
		Category:       r.Category,
		Experience:     r.Experience,
		Status:         teacherapp.Status(r.Status),
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

const applicationColumns = "id, applicant_email, applicant_name, title, category, experience, status, created_at"

type TeacherApplicationRepository struct {
	db *sqlx.DB
}

var _ teacherapp.Repository = (*TeacherApplicationRepository)(nil)

func NewTeacherApplicationRepository(db *sqlx.DB) *TeacherApplicationRepository {
	return &TeacherApplicationRepository{db: db}
}

func (repo *TeacherApplicationRepository) CreateApplication(ctx context.Context, app teacherapp.Application) (teacherapp.Application, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO teacher_application (id, applicant_email, applicant_name, title, category, experience, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		app.ID, app.ApplicantEmail, app.ApplicantName, app.Title, app.Category, app.Experience, string(app.Status), app.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "teacher_application_active_uniq") {
			return teacherapp.Application{}, teacherapp.ErrDuplicateApplication
		}
		return teacherapp.Application{}, errors.Wrap(err, "inserting teacher application")
	}
	return app, nil
}

func (repo *TeacherApplicationRepository) GetApplicationByID(ctx context.Context, id string) (teacherapp.Application, error) {
	var row applicationRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+applicationColumns+` FROM teacher_application WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return teacherapp.Application{}, teacherapp.ErrNotFound
	}
	if err != nil {
		return teacherapp.Application{}, errors.Wrap(err, "selecting teacher application by id")
	}
	return row.toDomain(), nil
}

func (repo *TeacherApplicationRepository) GetLatestApplicationByEmail(ctx context.Context, email string) (teacherapp.Application, error) {
	var row applicationRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT `+applicationColumns+` FROM teacher_application
		 WHERE applicant_email = $1 ORDER BY created_at DESC LIMIT 1`, email)
	if err == sql.ErrNoRows {
		return teacherapp.Application{}, teacherapp.ErrNotFound
	}
	if err != nil {
		return teacherapp.Application{}, errors.Wrap(err, "selecting latest teacher application")
	}
	return row.toDomain(), nil
}

func (repo *TeacherApplicationRepository) QueryAllApplications(ctx context.Context) ([]teacherapp.Application, error) {
	var rows []applicationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+applicationColumns+` FROM teacher_application ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "selecting teacher applications")
	}
	apps := make([]teacherapp.Application, len(rows))
	for i, row := range rows {
		apps[i] = row.toDomain()
	}
	return apps, nil
}

func (repo *TeacherApplicationRepository) UpdateApplicationStatus(ctx context.Context, id string, status teacherapp.Status) (teacherapp.Application, error) {
	var row applicationRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE teacher_application SET status = $2 WHERE id = $1 RETURNING `+applicationColumns,
		id, string(status))
	if err == sql.ErrNoRows {
		return teacherapp.Application{}, teacherapp.ErrNotFound
	}
	if err != nil {
		return teacherapp.Application{}, errors.Wrap(err, "updating teacher application status")
	}
	return row.toDomain(), nil
}

func (repo *TeacherApplicationRepository) QueryAcceptedWithoutTeacherRole(ctx context.Context) ([]teacherapp.Application, error) {
	var rows []applicationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT ta.id, ta.applicant_email, ta.applicant_name, ta.title, ta.category, ta.experience, ta.status, ta.created_at
		 FROM teacher_application ta
		 JOIN account a ON a.email = ta.applicant_email
		 WHERE ta.status = $1 AND a.role <> $2`,
		string(teacherapp.StatusAccepted), account.RoleTeacher.String())
	if err != nil {
		return nil, errors.Wrap(err, "selecting unreconciled accepted applications")
	}
	apps := make([]teacherapp.Application, len(rows))
	for i, row := range rows {
		apps[i] = row.toDomain()
	}
	return apps, nil
}
