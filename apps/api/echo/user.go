package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

var (
	errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

	noPermsToSetRoleErr = "you are not allowed to set this role"
)

type userApi struct {
	svc  *user.Service
	auth *tokenAuth
}

func registerUserAPI(g *echo.Group, auth *tokenAuth, svc *user.Service) {
	api := userApi{svc: svc, auth: auth}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/create", api.create)
	ug.POST("/login", api.login)
	ug.GET("/all", api.queryAll)
	ug.GET("/role/:role", api.queryByRole)

	// authed endpoints
	ag := ug.Group("", auth.middleware())
	ag.GET("/me", api.me)
	ag.POST("/token-refresh", api.refreshToken)

	// detail endpoints
	dg := ag.Group("/:userCode", ctxUserOrAdminMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
}

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	// sign up cannot grant a role above MaxSignupRole, admins are added with the admin cli
	data.Clean()
	if user.RolePriority(data.Role) > user.RolePriority(user.MaxSignupRole) {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: noPermsToSetRoleErr})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}

	usr, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.UserToken(usr)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{User: usr, Token: token})
}

func (api *userApi) queryAll(ctx echo.Context) error {
	orderings := bindOrderings(ctx, user.OrderingFields)

	users, err := api.svc.QueryAll(ctx.Request().Context(), orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, userList(users))
}

func (api *userApi) queryByRole(ctx echo.Context) error {
	orderings := bindOrderings(ctx, user.OrderingFields)

	users, err := api.svc.QueryByRole(ctx.Request().Context(), ctx.Param("role"), orderings...)
	if err != nil {
		return errors.Wrap(err, "querying users by role")
	}
	return ctx.JSON(http.StatusOK, userList(users))
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	data.Clean()

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	// `Role` can only be changed by admin
	if !ctxUsr.IsAdmin() && data.Role != nil && *data.Role != usr.Role {
		return errHttpForbidden
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr.UserCode, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func userList(users []user.User) []user.User {
	if users == nil {
		return []user.User{}
	}
	return users
}

type (
	LoginResponse struct {
		User  user.User `json:"user"`
		Token string    `json:"token"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)
