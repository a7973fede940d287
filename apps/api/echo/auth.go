package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/user"
)

const (
	contextTokenKey = "userToken"
	contextUserKey  = "user"
	tokenAudience   = "Classwork"
)

// Claims represents the authorization claims transmitted via a JWT. Subject is the user code.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsStudent    bool   `json:"is_student,omitempty"` // -> STUDENT PORTAL
	IsTeacher    bool   `json:"is_teacher,omitempty"` // -> TEACHER PORTAL
	IsAdmin      bool   `json:"is_admin,omitempty"`   // -> ADMIN PORTAL
}

type userGetter interface {
	GetByCode(ctx context.Context, code string) (user.User, error)
}

// tokenAuth issues and checks the JWTs of the API.
type tokenAuth struct {
	conf   *core.Config
	config middleware.JWTConfig
}

func newTokenAuth(conf *core.Config) *tokenAuth {
	return &tokenAuth{
		conf: conf,
		config: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

func (ta *tokenAuth) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(ta.config)
}

func (ta *tokenAuth) userClaims(usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ta.conf.AppName,
			Subject:   usr.UserCode,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(ta.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		FullName:     usr.FullName,
		Email:        usr.Email,
		Role:         usr.Role,
		IsStudent:    usr.IsStudent(),
		IsTeacher:    usr.IsTeacher(),
		IsAdmin:      usr.IsAdmin(),
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (ta *tokenAuth) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(ta.config.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(ta.config.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// UserToken returns a fresh token for usr.
func (ta *tokenAuth) UserToken(usr user.User) (string, error) {
	return ta.generateToken(ta.userClaims(usr))
}

// refreshToken issues a new token for the context user as long as the refresh window
// opened by the first token is not over.
func (ta *tokenAuth) refreshToken(ctx echo.Context, svc userGetter) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(ta.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := ta.generateToken(ta.userClaims(usr, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc userGetter, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var (
		claims Claims
		err    error
	)
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByCode(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// the user was removed after the token was issued
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by code")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
