package inmemdb

import (
	"context"

	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/teacherapp"
)

type teacherApplicationRepository struct {
	db *DB
}

var _ teacherapp.Repository = (*teacherApplicationRepository)(nil)

func NewTeacherApplicationRepository(db *DB) teacherapp.Repository {
	return &teacherApplicationRepository{db: db}
}

func (repo *teacherApplicationRepository) CreateApplication(_ context.Context, app teacherapp.Application) (teacherapp.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// one active (pending|accepted) application per email
	for _, a := range repo.db.applications {
		if a.ApplicantEmail == app.ApplicantEmail &&
			(a.Status == teacherapp.StatusPending || a.Status == teacherapp.StatusAccepted) {
			return teacherapp.Application{}, teacherapp.ErrDuplicateApplication
		}
	}
	repo.db.applications = append(repo.db.applications, &app)
	return app, nil
}

func (repo *teacherApplicationRepository) GetApplicationByID(_ context.Context, id string) (teacherapp.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, app := range repo.db.applications {
		if app.ID == id {
			return *app, nil
		}
	}
	return teacherapp.Application{}, teacherapp.ErrNotFound
}

func (repo *teacherApplicationRepository) GetLatestApplicationByEmail(_ context.Context, email string) (teacherapp.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// walk backwards: insertion order is creation order
	for i := len(repo.db.applications) - 1; i >= 0; i-- {
		if app := repo.db.applications[i]; app.ApplicantEmail == email {
			return *app, nil
		}
	}
	return teacherapp.Application{}, teacherapp.ErrNotFound
}

func (repo *teacherApplicationRepository) QueryAllApplications(_ context.Context) ([]teacherapp.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	apps := make([]teacherapp.Application, 0, len(repo.db.applications))
	for i := len(repo.db.applications) - 1; i >= 0; i-- {
		apps = append(apps, *repo.db.applications[i])
	}
	return apps, nil
}

func (repo *teacherApplicationRepository) UpdateApplicationStatus(_ context.Context, id string, status teacherapp.Status) (teacherapp.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, app := range repo.db.applications {
		if app.ID == id {
			app.Status = status
			return *app, nil
		}
	}
	return teacherapp.Application{}, teacherapp.ErrNotFound
}

func (repo *teacherApplicationRepository) QueryAcceptedWithoutTeacherRole(_ context.Context) ([]teacherapp.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var apps []teacherapp.Application
	for _, app := range repo.db.applications {
		if app.Status != teacherapp.StatusAccepted {
			continue
		}
		if acc := repo.db.findByEmail(app.ApplicantEmail); acc != nil && acc.Role != account.RoleTeacher {
			apps = append(apps, *app)
		}
	}
	return apps, nil
}
