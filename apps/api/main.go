package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/skillspear/skillspear/apps/api/echo"
	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
	"github.com/skillspear/skillspear/core/enrollment"
	"github.com/skillspear/skillspear/core/teacherapp"
	emailsvc "github.com/skillspear/skillspear/services/email"
	logsvc "github.com/skillspear/skillspear/services/logger"
	paymentsvc "github.com/skillspear/skillspear/services/payment"
	"github.com/skillspear/skillspear/storage/database"
	sqlxrepos "github.com/skillspear/skillspear/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up DB; lifecycle is owned here, not by first use
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var gateway core.PaymentService
	if conf.StripeSecretKey != "" {
		gateway = paymentsvc.NewStripeService(conf)
	} else {
		gateway = paymentsvc.NewDummyService()
	}

	accRepo := sqlxrepos.NewAccountRepository(db)
	accSvc := account.NewService(accRepo)
	teacherSvc := teacherapp.NewService(sqlxrepos.NewTeacherApplicationRepository(db), accRepo, mailSvc)
	courseRepo := sqlxrepos.NewCourseOfferingRepository(db)
	courseSvc := course.NewService(courseRepo)
	ledgerSvc := enrollment.NewService(sqlxrepos.NewPaymentRepository(db), courseRepo, gateway, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// repair role cascades interrupted by a partial failure
	if n, err := teacherSvc.Reconcile(context.Background()); err != nil {
		logger.Error("reconciling accepted teacher applications", err)
	} else if n > 0 {
		logger.Info(fmt.Sprintf("reconciled %d accepted teacher application(s)", n))
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		AccountSvc:    accSvc,
		TeacherAppSvc: teacherSvc,
		CourseSvc:     courseSvc,
		EnrollmentSvc: ledgerSvc,
		Validate:      validate,
		Translator:    translator,
	})
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
