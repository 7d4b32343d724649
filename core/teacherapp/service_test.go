package teacherapp_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/teacherapp"
	inmemdb "github.com/skillspear/skillspear/storage/database/inmem"
)

// mailRecorder captures sent messages synchronously.
type mailRecorder struct {
	mu   sync.Mutex
	msgs []*core.EmailMessage
}

var _ core.EmailService = (*mailRecorder)(nil)

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	m.msgs = append(m.msgs, messages...)
	m.mu.Unlock()
}

func (m *mailRecorder) sent() []*core.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*core.EmailMessage(nil), m.msgs...)
}

// flakyAccountRepository fails role updates on demand.
type flakyAccountRepository struct {
	account.Repository
	failRoleUpdate bool
}

func (repo *flakyAccountRepository) UpdateAccountRoleByEmail(ctx context.Context, email string, role account.Role) (account.Account, error) {
	if repo.failRoleUpdate {
		return account.Account{}, errors.New("store unavailable")
	}
	return repo.Repository.UpdateAccountRoleByEmail(ctx, email, role)
}

func setup(t *testing.T) (*teacherapp.Service, *account.Service, *flakyAccountRepository, *mailRecorder) {
	t.Helper()
	db := inmemdb.NewDB()
	accRepo := &flakyAccountRepository{Repository: inmemdb.NewAccountRepository(db)}
	mailSvc := &mailRecorder{}
	svc := teacherapp.NewService(inmemdb.NewTeacherApplicationRepository(db), accRepo, mailSvc)
	return svc, account.NewService(accRepo), accRepo, mailSvc
}

func registerAccount(t *testing.T, accSvc *account.Service, email, name string) account.Account {
	t.Helper()
	res, err := accSvc.Register(context.Background(), account.NewAccount{Email: email, Name: name})
	if err != nil {
		t.Fatalf("registerAccount() failed: %v", err)
	}
	return res.Account
}

func submit(t *testing.T, svc *teacherapp.Service, email, name string) teacherapp.SubmitResult {
	t.Helper()
	res, err := svc.Submit(context.Background(), teacherapp.NewApplication{
		Email:    email,
		Name:     name,
		Title:    "Intro to Go",
		Category: "Programming",
	})
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	return res
}

func TestService_Submit(t *testing.T) {
	svc, accSvc, _, _ := setup(t)
	registerAccount(t, accSvc, "jane@test.cd", "Jane")

	res := submit(t, svc, "jane@test.cd", "Jane")
	if !res.Created {
		t.Fatalf("Submit() created = false; want true")
	}
	if res.Application.Status != teacherapp.StatusPending {
		t.Errorf("Submit() status = %v; want %v", res.Application.Status, teacherapp.StatusPending)
	}

	// a pending application short-circuits resubmission
	res2 := submit(t, svc, "jane@test.cd", "Jane")
	if res2.Created {
		t.Errorf("Submit() created = true; want false")
	}
	if res2.Message != "Request already sent to admin" {
		t.Errorf("Submit() message = %q; want %q", res2.Message, "Request already sent to admin")
	}
	if res2.Application.ID != res.Application.ID {
		t.Errorf("Submit() returned a different application: %v != %v", res2.Application.ID, res.Application.ID)
	}

	apps, err := svc.QueryAll(context.Background())
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("QueryAll() len = %d; want 1", len(apps))
	}
}

func TestService_Submit_concurrent(t *testing.T) {
	svc, accSvc, _, _ := setup(t)
	registerAccount(t, accSvc, "race@test.cd", "Racer")

	const n = 16
	var wg sync.WaitGroup
	results := make([]teacherapp.SubmitResult, n)
	errs := make([]error, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Submit(context.Background(), teacherapp.NewApplication{
				Email: "race@test.cd",
				Name:  "Racer",
			})
		}(i)
	}
	wg.Wait()

	var created int
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("Submit() #%d failed: %v", i, errs[i])
		}
		if results[i].Created {
			created++
		}
	}
	if created != 1 {
		t.Errorf("created = %d; want exactly 1", created)
	}

	apps, err := svc.QueryAll(context.Background())
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("QueryAll() len = %d; want 1", len(apps))
	}
}

func TestService_Accept(t *testing.T) {
	svc, accSvc, _, mailSvc := setup(t)
	ctx := context.Background()
	registerAccount(t, accSvc, "jane@test.cd", "Jane")

	res := submit(t, svc, "jane@test.cd", "Jane")

	ares, err := svc.Accept(ctx, res.Application.ID)
	if err != nil {
		t.Fatalf("Accept() failed: %v", err)
	}
	if ares.Application.Status != teacherapp.StatusAccepted {
		t.Errorf("Accept() status = %v; want %v", ares.Application.Status, teacherapp.StatusAccepted)
	}
	if !ares.RoleUpdated {
		t.Errorf("Accept() roleUpdated = false; want true")
	}

	// the teacher role cascades onto the account
	acc, err := accSvc.GetByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if !acc.IsTeacher() {
		t.Errorf("account role = %v; want %v", acc.Role, account.RoleTeacher)
	}

	// the applicant gets notified
	if msgs := mailSvc.sent(); len(msgs) != 1 {
		t.Errorf("sent messages = %d; want 1", len(msgs))
	} else if len(msgs[0].To) != 1 || msgs[0].To[0].Address != "jane@test.cd" {
		t.Errorf("message recipient = %v; want jane@test.cd", msgs[0].To)
	}

	// accepting again is a no-op repair, not an error
	if _, err = svc.Accept(ctx, res.Application.ID); err != nil {
		t.Errorf("Accept() again failed: %v", err)
	}

	// submitting after acceptance short-circuits
	res2 := submit(t, svc, "jane@test.cd", "Jane")
	if res2.Created {
		t.Errorf("Submit() created = true; want false")
	}
	if res2.Message != "Accepted as a teacher" {
		t.Errorf("Submit() message = %q; want %q", res2.Message, "Accepted as a teacher")
	}

	if _, err = svc.Accept(ctx, "<deadbeef>"); err != teacherapp.ErrNotFound {
		t.Errorf("Accept() error = %v; want %v", err, teacherapp.ErrNotFound)
	}
}

func TestService_Accept_partialFailure(t *testing.T) {
	svc, accSvc, accRepo, _ := setup(t)
	ctx := context.Background()
	registerAccount(t, accSvc, "jane@test.cd", "Jane")

	res := submit(t, svc, "jane@test.cd", "Jane")

	// the status flip lands but the role cascade fails
	accRepo.failRoleUpdate = true
	ares, err := svc.Accept(ctx, res.Application.ID)
	if err == nil {
		t.Fatalf("Accept() error = nil; want role update failure")
	}
	if ares.Application.Status != teacherapp.StatusAccepted {
		t.Errorf("Accept() status = %v; want %v", ares.Application.Status, teacherapp.StatusAccepted)
	}
	if ares.RoleUpdated {
		t.Errorf("Accept() roleUpdated = true; want false")
	}

	acc, err := accSvc.GetByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if acc.IsTeacher() {
		t.Fatalf("account role cascaded despite the failure")
	}

	// Reconcile repairs the cascade once the store recovers
	accRepo.failRoleUpdate = false
	n, err := svc.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Reconcile() = %d; want 1", n)
	}

	acc, err = accSvc.GetByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if !acc.IsTeacher() {
		t.Errorf("account role = %v; want %v", acc.Role, account.RoleTeacher)
	}

	// nothing left to repair
	if n, err = svc.Reconcile(ctx); err != nil {
		t.Fatalf("Reconcile() failed: %v", err)
	} else if n != 0 {
		t.Errorf("Reconcile() = %d; want 0", n)
	}
}

func TestService_Accept_retryRepairs(t *testing.T) {
	svc, accSvc, accRepo, _ := setup(t)
	ctx := context.Background()
	registerAccount(t, accSvc, "jane@test.cd", "Jane")

	res := submit(t, svc, "jane@test.cd", "Jane")

	accRepo.failRoleUpdate = true
	if _, err := svc.Accept(ctx, res.Application.ID); err == nil {
		t.Fatalf("Accept() error = nil; want role update failure")
	}

	// retrying on the already-accepted application applies the role
	accRepo.failRoleUpdate = false
	ares, err := svc.Accept(ctx, res.Application.ID)
	if err != nil {
		t.Fatalf("Accept() retry failed: %v", err)
	}
	if !ares.RoleUpdated {
		t.Errorf("Accept() roleUpdated = false; want true")
	}

	acc, err := accSvc.GetByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if !acc.IsTeacher() {
		t.Errorf("account role = %v; want %v", acc.Role, account.RoleTeacher)
	}
}

func TestService_Reject(t *testing.T) {
	svc, accSvc, _, _ := setup(t)
	ctx := context.Background()
	registerAccount(t, accSvc, "jane@test.cd", "Jane")

	res := submit(t, svc, "jane@test.cd", "Jane")

	app, err := svc.Reject(ctx, res.Application.ID)
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if app.Status != teacherapp.StatusRejected {
		t.Errorf("Reject() status = %v; want %v", app.Status, teacherapp.StatusRejected)
	}

	// no cascade on rejection
	acc, err := accSvc.GetByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetByEmail() failed: %v", err)
	}
	if acc.Role != account.RoleStudent {
		t.Errorf("account role = %v; want %v", acc.Role, account.RoleStudent)
	}

	// a rejected application does not block resubmission
	res2 := submit(t, svc, "jane@test.cd", "Jane")
	if !res2.Created {
		t.Fatalf("Submit() created = false after rejection; want true")
	}
	if res2.Application.ID == res.Application.ID {
		t.Errorf("Submit() reused the rejected application")
	}

	latest, err := svc.GetLatestByEmail(ctx, "jane@test.cd")
	if err != nil {
		t.Fatalf("GetLatestByEmail() failed: %v", err)
	}
	if latest.ID != res2.Application.ID {
		t.Errorf("GetLatestByEmail() = %v; want %v", latest.ID, res2.Application.ID)
	}

	apps, err := svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(apps) != 2 {
		t.Errorf("QueryAll() len = %d; want 2", len(apps))
	}
}
