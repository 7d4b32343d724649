package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
)

type courseAPI struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(
	app *echo.Echo,
	jwt echo.MiddlewareFunc,
	accSvc *account.Service,
	svc *course.Service,
	validate *validator.Validate,
) {
	api := courseAPI{
		svc:      svc,
		validate: validate,
	}

	cg := app.Group("/course-offerings")
	cg.GET("", api.queryApproved)
	cg.POST("", api.create, jwt, requireRole(accSvc, account.RoleTeacher, account.RoleAdmin))
	cg.GET("/all", api.queryAll, jwt, requireRole(accSvc, account.RoleAdmin))
	cg.GET("/owned/:email", api.queryOwned, jwt, requireSelf())
	cg.PATCH("/:id/approve", api.approve, jwt, requireRole(accSvc, account.RoleAdmin))
	cg.PATCH("/:id/reject", api.reject, jwt, requireRole(accSvc, account.RoleAdmin))
}

// Handlers

func (api *courseAPI) create(ctx echo.Context) error {
	var data course.NewOffering
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewOffering")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if data.OwnerEmail == "" {
		data.OwnerEmail = claims.Email
	}
	if data.OwnerName == "" {
		data.OwnerName = claims.Name
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	off, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course offering")
	}
	return ctx.JSON(http.StatusCreated, off)
}

func (api *courseAPI) queryApproved(ctx echo.Context) error {
	offs, err := api.svc.QueryApproved(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying approved course offerings")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(offs))
}

func (api *courseAPI) queryAll(ctx echo.Context) error {
	offs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying course offerings")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(offs))
}

func (api *courseAPI) queryOwned(ctx echo.Context) error {
	email := core.CleanString(ctx.Param("email"), true /* lower */)
	offs, err := api.svc.QueryByOwner(ctx.Request().Context(), email)
	if err != nil {
		return errors.Wrap(err, "querying owned course offerings")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(offs))
}

func (api *courseAPI) approve(ctx echo.Context) error {
	off, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving course offering")
	}
	return ctx.JSON(http.StatusOK, off)
}

func (api *courseAPI) reject(ctx echo.Context) error {
	off, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rejecting course offering")
	}
	return ctx.JSON(http.StatusOK, off)
}

func emptyIfNil(offs []course.Offering) []course.Offering {
	if offs == nil {
		return []course.Offering{}
	}
	return offs
}
