package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
	"github.com/skillspear/skillspear/core/enrollment"
	"github.com/skillspear/skillspear/core/teacherapp"
	emailsvc "github.com/skillspear/skillspear/services/email"
	logsvc "github.com/skillspear/skillspear/services/logger"
	paymentsvc "github.com/skillspear/skillspear/services/payment"
	inmemdb "github.com/skillspear/skillspear/storage/database/inmem"
)

var (
	conf *core.Config
	db   *inmemdb.DB
	app  Server

	accRepo    account.Repository
	appRepo    teacherapp.Repository
	courseRepo course.Repository
	payRepo    enrollment.Repository
	gateway    *paymentsvc.DummyService

	errUnauthorizedBody = httpErr{Error: "unauthorized access"}
	errForbiddenBody    = httpErr{Error: "forbidden access"}
	errNotFoundBody     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		Debug:     false,
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Skill Spear",
		SecretKey: []byte("s3cr3t-t3st-k3y"),
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
	}

	// set up DB & repos
	db = inmemdb.NewDB()
	accRepo = inmemdb.NewAccountRepository(db)
	appRepo = inmemdb.NewTeacherApplicationRepository(db)
	courseRepo = inmemdb.NewCourseOfferingRepository(db)
	payRepo = inmemdb.NewPaymentRepository(db)

	// set up services
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	mailSvc := emailsvc.NewConsoleService(conf)
	gateway = paymentsvc.NewDummyService()

	accSvc := account.NewService(accRepo)
	teacherSvc := teacherapp.NewService(appRepo, accRepo, mailSvc)
	courseSvc := course.NewService(courseRepo)
	ledgerSvc := enrollment.NewService(payRepo, courseRepo, gateway, logger)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	// set up server
	app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		AccountSvc:     accSvc,
		TeacherAppSvc:  teacherSvc,
		CourseSvc:      courseSvc,
		EnrollmentSvc:  ledgerSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, email, name string) string {
	t.Helper()
	token, err := GenerateToken(GetIdentityClaims(email, name, conf), conf)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func createAccount(t *testing.T, email, name string, role account.Role) account.Account {
	t.Helper()
	acc, err := accRepo.CreateAccount(context.Background(), account.Account{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createAccount(): %v", err)
	}
	return acc
}

func createApplication(t *testing.T, email, name string, status teacherapp.Status) teacherapp.Application {
	t.Helper()
	app, err := appRepo.CreateApplication(context.Background(), teacherapp.Application{
		ID:             uuid.NewString(),
		ApplicantEmail: email,
		ApplicantName:  name,
		Title:          "Intro to Go",
		Category:       "Programming",
		Status:         teacherapp.StatusPending,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createApplication(): %v", err)
	}
	if status != teacherapp.StatusPending {
		if app, err = appRepo.UpdateApplicationStatus(context.Background(), app.ID, status); err != nil {
			t.Fatalf("createApplication(): %v", err)
		}
	}
	return app
}

func createOffering(t *testing.T, title, ownerEmail string, price int64, status course.ApprovalStatus) course.Offering {
	t.Helper()
	off, err := courseRepo.CreateOffering(context.Background(), course.Offering{
		ID:             uuid.NewString(),
		Title:          title,
		OwnerEmail:     ownerEmail,
		OwnerName:      "Owner",
		Price:          price,
		ApprovalStatus: status,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createOffering(): %v", err)
	}
	return off
}

func createPayment(t *testing.T, payerEmail, offeringID string, amount int64) enrollment.Payment {
	t.Helper()
	p, err := payRepo.CreatePayment(context.Background(), enrollment.Payment{
		ID:               uuid.NewString(),
		PayerEmail:       payerEmail,
		CourseOfferingID: offeringID,
		Amount:           amount,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("createPayment(): %v", err)
	}
	return p
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarchallObj(t *testing.T, data []byte, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchallObj(): %v", err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if l1, ok := j1.([]interface{}); ok {
		l2, ok := j2.([]interface{})
		if !ok {
			return false, nil
		}
		return assert.ElementsMatch(t, l1, l2), nil
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
