package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/teacherapp"
)

type teacherAppAPI struct {
	svc      *teacherapp.Service
	validate *validator.Validate
}

func registerTeacherApplicationAPI(
	app *echo.Echo,
	jwt echo.MiddlewareFunc,
	accSvc *account.Service,
	svc *teacherapp.Service,
	validate *validator.Validate,
) {
	api := teacherAppAPI{
		svc:      svc,
		validate: validate,
	}

	tg := app.Group("/teacher-applications", jwt)
	tg.POST("", api.submit)
	tg.GET("", api.query, requireRole(accSvc, account.RoleAdmin))
	tg.GET("/:email", api.retrieveOwn, requireSelf())
	tg.PATCH("/:id/accept", api.accept, requireRole(accSvc, account.RoleAdmin))
	tg.PATCH("/:id/reject", api.reject, requireRole(accSvc, account.RoleAdmin))
}

// Handlers

func (api *teacherAppAPI) submit(ctx echo.Context) error {
	var data teacherapp.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}

	// applicants apply for themselves; fill identity from the credential
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if data.Email == "" {
		data.Email = claims.Email
	}
	if data.Name == "" {
		data.Name = claims.Name
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting teacher application")
	}
	if !res.Created {
		return ctx.JSON(http.StatusOK, res)
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *teacherAppAPI) query(ctx echo.Context) error {
	apps, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teacher applications")
	}
	if apps == nil {
		apps = []teacherapp.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *teacherAppAPI) retrieveOwn(ctx echo.Context) error {
	email := core.CleanString(ctx.Param("email"), true /* lower */)
	app, err := api.svc.GetLatestByEmail(ctx.Request().Context(), email)
	if err != nil {
		return errors.Wrap(err, "finding teacher application by email")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *teacherAppAPI) accept(ctx echo.Context) error {
	res, err := api.svc.Accept(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "accepting teacher application")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *teacherAppAPI) reject(ctx echo.Context) error {
	app, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rejecting teacher application")
	}
	return ctx.JSON(http.StatusOK, app)
}
