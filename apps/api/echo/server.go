package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
	"github.com/skillspear/skillspear/core/enrollment"
	"github.com/skillspear/skillspear/core/teacherapp"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		AccountSvc     *account.Service
		TeacherAppSvc  *teacherapp.Service
		CourseSvc      *course.Service
		EnrollmentSvc  *enrollment.Service
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps    ServerDeps
		app     *echo.Echo
		errChan chan error
		sdChan  chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:    deps,
		app:     echo.New(),
		errChan: make(chan error, 1),
		sdChan:  make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerAccountAPI(s.app, jwt, s.deps.AccountSvc, s.deps.Validate, conf)
	registerTeacherApplicationAPI(s.app, jwt, s.deps.AccountSvc, s.deps.TeacherAppSvc, s.deps.Validate)
	registerCourseAPI(s.app, jwt, s.deps.AccountSvc, s.deps.CourseSvc, s.deps.Validate)
	registerEnrollmentAPI(s.app, jwt, s.deps.EnrollmentSvc, s.deps.Validate)
}

func (s *server) Start() {
	signal.Notify(s.sdChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		s.errChan <- s.app.Start(s.deps.Conf.Server.Addr)
	}()
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errChan
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.sdChan
}

func (s *server) signalShutdown() {
	s.sdChan <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Skill Spear has been shot")
}
