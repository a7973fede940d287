package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/report"
	"github.com/pragya-git-bug/aibackend/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Translator     ut.Translator
		DisableReqLogs bool

		UserSvc       *user.Service
		AssignmentSvc *assignment.Service
		QuizSvc       *quiz.Service
		ReportSvc     *report.Service
	}

	Server struct {
		opts     Options
		app      *echo.Echo
		auth     *tokenAuth
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(opts Options) *Server {
	s := &Server{
		opts:     opts,
		app:      echo.New(),
		auth:     newTokenAuth(opts.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	registerUserAPI(api, s.auth, s.opts.UserSvc)
	registerAssignmentAPI(api, s.opts.AssignmentSvc, s.opts.ReportSvc)
	registerQuizAPI(api, s.opts.QuizSvc)
}

// Start listens on the configured address. Listener errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

// UserToken returns an access token for usr, as issued by the login endpoint.
func (s *Server) UserToken(usr user.User) (string, error) {
	return s.auth.UserToken(usr)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Classwork API!")
}
