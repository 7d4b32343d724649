package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/course"
	"github.com/skillspear/skillspear/core/enrollment"
)

type enrollmentAPI struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(app *echo.Echo, jwt echo.MiddlewareFunc, svc *enrollment.Service, validate *validator.Validate) {
	api := enrollmentAPI{
		svc:      svc,
		validate: validate,
	}

	app.POST("/payment-intents", api.createIntent)
	app.POST("/payments", api.record)
	app.GET("/enrollments", api.listEnrolled, jwt)
}

// Handlers

func (api *enrollmentAPI) createIntent(ctx echo.Context) error {
	var data enrollment.NewIntent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewIntent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	intent, err := api.svc.CreateIntent(ctx.Request().Context(), data.Price)
	if err != nil {
		return errors.Wrap(err, "creating payment intent")
	}
	return ctx.JSON(http.StatusOK, intent)
}

func (api *enrollmentAPI) record(ctx echo.Context) error {
	var data enrollment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *enrollmentAPI) listEnrolled(ctx echo.Context) error {
	payer := core.CleanString(ctx.QueryParam("payer"), true /* lower */)
	if payer == "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		payer = claims.Email
	}

	offs, err := api.svc.ListEnrolled(ctx.Request().Context(), payer)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	if offs == nil {
		offs = []course.Offering{}
	}
	return ctx.JSON(http.StatusOK, offs)
}
