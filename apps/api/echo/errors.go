package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/user"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")

	notFoundErrors = []error{
		user.ErrNotFound,
		assignment.ErrNotFound,
		assignment.ErrSubmissionNotFound,
		quiz.ErrNotFound,
		quiz.ErrSubmissionNotFound,
	}
)

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message interface{}

			httpErr *echo.HTTPError
			fldErrs validator.ValidationErrors
			valErr  *core.ValidationError
		)

		switch {
		case errors.As(err, &httpErr):
			if httpErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = httpErr.Message
				break
			}
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &fldErrs):
			msgs := make(map[string]string, len(fldErrs))
			for _, vErr := range fldErrs {
				msgs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = msgs
		case errors.As(err, &valErr):
			if valErr.Fields != nil {
				msgs := make(map[string]string, len(valErr.Fields))
				for _, fErr := range valErr.Fields {
					msgs[fErr.Field] = fErr.Error
				}
				message = msgs
			} else {
				message = valErr.Error()
			}
			code = http.StatusBadRequest
		case isNotFound(err):
			code = http.StatusNotFound
			message = errors.Cause(err).Error()
		case errors.Is(err, user.ErrInvalidCredential):
			code = http.StatusUnauthorized
			message = user.ErrInvalidCredential.Error()
		case core.IsDuplicateKey(err):
			code = http.StatusConflict
			message = "a record with the same unique field already exists"
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.UserCode = claims.Subject
				usr.FullName = claims.FullName
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) && signalShutdown != nil {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
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
