package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/skillspear/skillspear/core"
	"github.com/skillspear/skillspear/core/account"
	"github.com/skillspear/skillspear/core/course"
	"github.com/skillspear/skillspear/core/enrollment"
	"github.com/skillspear/skillspear/core/teacherapp"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "unauthorized access")
	errHTTPForbidden = echo.NewHTTPError(http.StatusForbidden, "forbidden access")
	errHTTPNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
	errHTTPUpstream  = echo.NewHTTPError(http.StatusBadGateway, "upstream service unavailable")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = errUnauthorized.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
			if code == http.StatusUnauthorized {
				// stable kind: authentication failures all read the same
				message = errUnauthorized.Message
			}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch origErr {
			case account.ErrNotFound, teacherapp.ErrNotFound, course.ErrNotFound:
				code = errHTTPNotFound.Code
				message = errHTTPNotFound.Message
			case enrollment.ErrGatewayUnavailable:
				code = errHTTPUpstream.Code
				message = errHTTPUpstream.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var acc account.Account
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					acc.Email = claims.Email
					acc.Name = claims.Name
				}
				logger.Error(msg, errors.Wrap(err, msg), acc)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
