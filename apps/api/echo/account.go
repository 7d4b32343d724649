package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
)

type accountAPI struct {
	svc      *account.Service
	validate *validator.Validate
	conf     *core.Config
}

func registerAccountAPI(app *echo.Echo, jwt echo.MiddlewareFunc, svc *account.Service, validate *validator.Validate, conf *core.Config) {
	api := accountAPI{
		svc:      svc,
		validate: validate,
		conf:     conf,
	}

	app.POST("/session-token", api.createSessionToken)

	ag := app.Group("/accounts")
	ag.POST("", api.register)
	ag.GET("", api.query, jwt, requireRole(svc, account.RoleAdmin))
	ag.PATCH("/:id/promote-admin", api.promoteAdmin, jwt, requireRole(svc, account.RoleAdmin))
	ag.GET("/:email/role-check/admin", api.adminCheck, jwt, requireSelf())
	ag.GET("/:email/role-check/teacher", api.teacherCheck, jwt, requireSelf())
}

// Handlers

func (api *accountAPI) createSessionToken(ctx echo.Context) error {
	var data SessionTokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SessionTokenRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	token, err := GenerateToken(GetIdentityClaims(data.Email, data.Name, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, SessionTokenResponse{Token: token})
}

func (api *accountAPI) register(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering account")
	}
	if !res.Created {
		return ctx.JSON(http.StatusOK, res)
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *accountAPI) query(ctx echo.Context) error {
	accs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	if accs == nil {
		accs = []account.Account{}
	}
	return ctx.JSON(http.StatusOK, accs)
}

func (api *accountAPI) promoteAdmin(ctx echo.Context) error {
	acc, err := api.svc.PromoteAdmin(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "promoting account to admin")
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountAPI) adminCheck(ctx echo.Context) error {
	return api.roleCheck(ctx, account.RoleAdmin, "admin")
}

func (api *accountAPI) teacherCheck(ctx echo.Context) error {
	return api.roleCheck(ctx, account.RoleTeacher, "teacher")
}

func (api *accountAPI) roleCheck(ctx echo.Context, role account.Role, key string) error {
	email := core.CleanString(ctx.Param("email"), true /* lower */)
	has, err := api.svc.HasRole(ctx.Request().Context(), email, role)
	if err != nil {
		return errors.Wrap(err, "checking account role")
	}
	return ctx.JSON(http.StatusOK, echo.Map{key: has})
}

type (
	SessionTokenRequest struct {
		Email string `json:"email" validate:"required,email"`
		Name  string `json:"name"`
	}

	SessionTokenResponse struct {
		Token string `json:"token"`
	}
)

func (str *SessionTokenRequest) Validate(validate *validator.Validate) error {
	str.Email = core.CleanString(str.Email, true /* lower */)
	str.Name = core.CleanString(str.Name)
	return validate.Struct(str)
}
