package echoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/pragya-git-bug/aibackend/core"
	"github.com/pragya-git-bug/aibackend/core/assignment"
	"github.com/pragya-git-bug/aibackend/core/codegen"
	"github.com/pragya-git-bug/aibackend/core/quiz"
	"github.com/pragya-git-bug/aibackend/core/user"
	logsvc "github.com/pragya-git-bug/aibackend/services/logger"
	testutil "github.com/pragya-git-bug/aibackend/tests"
)

func TestAppHTTPErrorHandler(t *testing.T) {
	validate, translator := testutil.NewValidator()
	logger := logsvc.NewRollbarLoggerMock()

	var shutdownCalled bool
	handler := newAppHTTPErrorHandler(logger, translator, func() { shutdownCalled = true })

	fieldErrs := validate.Struct(user.LoginCredentials{})
	if fieldErrs == nil {
		t.Fatal("validate.Struct() should fail on empty credentials")
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody map[string]string
	}{
		{
			name:     "missing jwt",
			err:      middleware.ErrJWTMissing,
			wantCode: http.StatusUnauthorized,
			wantBody: map[string]string{"error": "missing or malformed jwt"},
		},
		{
			name:     "http error",
			err:      errors.Wrap(errHttpForbidden, "checking perms"),
			wantCode: http.StatusForbidden,
			wantBody: map[string]string{"error": "permission denied"},
		},
		{
			name:     "validator errors",
			err:      errors.Wrap(fieldErrs, "logging in"),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]string{"email": "this field is required", "password": "this field is required"},
		},
		{
			name:     "validation error with fields",
			err:      core.NewValidationError(nil, core.FieldError{Field: "questions", Error: "question 1 is defined more than once"}),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]string{"questions": "question 1 is defined more than once"},
		},
		{
			name:     "validation error",
			err:      errors.Wrap(core.NewValidationError(errors.New("bad input")), "creating"),
			wantCode: http.StatusBadRequest,
			wantBody: map[string]string{"error": "bad input"},
		},
		{
			name:     "assignment not found",
			err:      errors.Wrap(assignment.ErrNotFound, "submitting assignment"),
			wantCode: http.StatusNotFound,
			wantBody: map[string]string{"error": "assignment not found"},
		},
		{
			name:     "submission not found",
			err:      errors.Wrap(quiz.ErrSubmissionNotFound, "reviewing quiz"),
			wantCode: http.StatusNotFound,
			wantBody: map[string]string{"error": "submission not found"},
		},
		{
			name:     "invalid credentials",
			err:      errors.Wrap(user.ErrInvalidCredential, "authenticating"),
			wantCode: http.StatusUnauthorized,
			wantBody: map[string]string{"error": "invalid credentials"},
		},
		{
			name:     "duplicate key",
			err:      errors.Wrap(core.ErrDuplicateKey, "creating quiz"),
			wantCode: http.StatusConflict,
			wantBody: map[string]string{"error": "a record with the same unique field already exists"},
		},
		{
			name:     "generation exhausted",
			err:      errors.Wrap(codegen.ErrGenerationExhausted, "generating code"),
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]string{"error": "Internal Server Error"},
		},
		{
			name:     "persistence error",
			err:      core.NewPersistenceError("querying users", errors.New("connection refused")),
			wantCode: http.StatusInternalServerError,
			wantBody: map[string]string{"error": "Internal Server Error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			handler(tt.err, e.NewContext(req, rec))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
			}
			assert.Equal(t, tt.wantBody, body)
		})
	}

	t.Run("shutdown", func(t *testing.T) {
		e := echo.New()
		rec := httptest.NewRecorder()
		handler(core.NewShutdownError("integrity issue"), e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.True(t, shutdownCalled)
	})
}
