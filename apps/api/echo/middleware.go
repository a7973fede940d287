package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ctxUserOrAdminMiddleware lets through the user whose code is the :userCode param, and admins.
func ctxUserOrAdminMiddleware(svc userGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			code := ctx.Param("userCode")
			if code != ctxUsr.UserCode && !ctxUsr.IsAdmin() {
				return errHttpNotFound
			}
			usr, err := svc.GetByCode(ctx.Request().Context(), code)
			if err != nil {
				return errors.Wrap(err, "finding user by code")
			}
			ctx.Set("object", usr)
			return next(ctx)
		}
	}
}
