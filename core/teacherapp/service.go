package teacherapp

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
)

var (
	// errors
	ErrNotFound             = errors.New("teacher application not found")
	ErrDuplicateApplication = errors.New("an active application already exists for this email")

	msgAlreadyPending  = "Request already sent to admin"
	msgAlreadyAccepted = "Accepted as a teacher"
)

type (
	Repository interface {
		// CreateApplication fails with ErrDuplicateApplication when a
		// pending or accepted application already exists for the email.
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplicationByID(ctx context.Context, id string) (Application, error)
		// GetLatestApplicationByEmail returns the most recently created
		// application for the email; older records may exist historically.
		GetLatestApplicationByEmail(ctx context.Context, email string) (Application, error)
		QueryAllApplications(ctx context.Context) ([]Application, error)
		UpdateApplicationStatus(ctx context.Context, id string, status Status) (Application, error)
		// QueryAcceptedWithoutTeacherRole returns accepted applications
		// whose owning account does not hold the teacher role yet.
		QueryAcceptedWithoutTeacherRole(ctx context.Context) ([]Application, error)
	}

	Service struct {
		repo    Repository
		accRepo account.Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, accRepo account.Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, accRepo: accRepo, mailSvc: mailSvc}
}

// Submit files a teacher application for na.Email unless one is still
// active. The read path uses the most recent application only; a rejected
// one does not block a fresh submission.
func (svc *Service) Submit(ctx context.Context, na NewApplication) (SubmitResult, error) {
	latest, err := svc.repo.GetLatestApplicationByEmail(ctx, na.Email)
	if err == nil {
		if res, done := shortCircuit(latest); done {
			return res, nil
		}
	} else if err != ErrNotFound {
		return SubmitResult{}, err
	}

	app, err := svc.repo.CreateApplication(ctx, Application{
		ID:             uuid.NewString(),
		ApplicantEmail: na.Email,
		ApplicantName:  na.Name,
		Title:          na.Title,
		Category:       na.Category,
		Experience:     na.Experience,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	})
	if err == ErrDuplicateApplication {
		// lost a concurrent submission race; report the winner
		if latest, err = svc.repo.GetLatestApplicationByEmail(ctx, na.Email); err == nil {
			if res, done := shortCircuit(latest); done {
				return res, nil
			}
		}
		if err != nil {
			return SubmitResult{}, err
		}
	}
	if err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Application: app, Created: true}, nil
}

func shortCircuit(app Application) (SubmitResult, bool) {
	switch app.Status {
	case StatusPending:
		return SubmitResult{Application: app, Message: msgAlreadyPending}, true
	case StatusAccepted:
		return SubmitResult{Application: app, Message: msgAlreadyAccepted}, true
	}
	return SubmitResult{}, false
}

// Accept flips the application to accepted, then cascades the teacher role
// onto the owning account. The two writes hit two independent records with
// no transaction across them; both are idempotent, so re-running Accept on
// an already-accepted application repairs a partial failure.
func (svc *Service) Accept(ctx context.Context, id string) (AcceptResult, error) {
	app, err := svc.repo.UpdateApplicationStatus(ctx, id, StatusAccepted)
	if err != nil {
		return AcceptResult{}, err
	}
	res := AcceptResult{Application: app}

	if _, err = svc.accRepo.UpdateAccountRoleByEmail(ctx, app.ApplicantEmail, account.RoleTeacher); err != nil {
		// application is accepted but the role is not applied yet; the
		// caller (or Reconcile) retries
		return res, err
	}
	res.RoleUpdated = true

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: app.ApplicantName, Address: app.ApplicantEmail}},
		Subject: "Teacher application accepted",
		Body: fmt.Sprintf(
			"Hi %s,\n\nCongratulations! Your application to teach on Skill Spear has been accepted. "+
				"You can now publish course offerings from your teacher dashboard.\n",
			app.ApplicantName,
		),
	})
	return res, nil
}

// Reject flips the application to rejected. No cascade on the account.
func (svc *Service) Reject(ctx context.Context, id string) (Application, error) {
	return svc.repo.UpdateApplicationStatus(ctx, id, StatusRejected)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Application, error) {
	return svc.repo.QueryAllApplications(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *Service) GetLatestByEmail(ctx context.Context, email string) (Application, error) {
	return svc.repo.GetLatestApplicationByEmail(ctx, email)
}

// Reconcile repairs role cascades that failed after the application
// status write: every accepted application whose account is not a teacher
// yet gets the role applied. Returns the number of repaired accounts.
func (svc *Service) Reconcile(ctx context.Context) (int, error) {
	apps, err := svc.repo.QueryAcceptedWithoutTeacherRole(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	for _, app := range apps {
		if _, err = svc.accRepo.UpdateAccountRoleByEmail(ctx, app.ApplicantEmail, account.RoleTeacher); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
