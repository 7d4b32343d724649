package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
)

// requireRole authorizes the authenticated identity against the account's
// CURRENT role, re-read from the store on every request. Token claims are
// never trusted for authorization, so a demotion takes effect immediately
// even for credentials issued before it.
func requireRole(svc *account.Service, roles ...account.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}

			acc, err := svc.GetByEmail(ctx.Request().Context(), claims.Email)
			if err != nil {
				if errors.Cause(err) == account.ErrNotFound {
					return errHTTPForbidden
				}
				return errors.Wrap(err, "finding account by email")
			}

			switch acc.Role {
			case account.RoleNone, account.RoleStudent, account.RoleTeacher, account.RoleAdmin:
				for _, role := range roles {
					if acc.Role == role {
						ctx.Set(contextAccountKey, acc)
						return next(ctx)
					}
				}
			}
			return errHTTPForbidden
		}
	}
}

// requireSelf restricts an endpoint scoped to "my own data": the :email
// path param must match the authenticated identity's email.
func requireSelf() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if core.CleanString(ctx.Param("email"), true /* lower */) != claims.Email {
				return errHTTPForbidden
			}
			return next(ctx)
		}
	}
}
