package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	echoapi "github.com/pragya-git-bug/aibackend/apps/api/echo"
	"github.com/pragya-git-bug/aibackend/core/user"
	testutil "github.com/pragya-git-bug/aibackend/tests"
)

const testPwd = "Xk9#qLz2!"

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
}

func setup(t *testing.T) (*echoapi.Server, *testutil.Services) {
	t.Helper()
	svcs := testutil.NewServices()
	srv := echoapi.NewServer(echoapi.Options{
		Conf:           svcs.Conf,
		Logger:         svcs.Logger,
		Translator:     svcs.Translator,
		DisableReqLogs: true,
		UserSvc:        svcs.Users,
		AssignmentSvc:  svcs.Assignments,
		QuizSvc:        svcs.Quizzes,
		ReportSvc:      svcs.Reports,
	})
	return srv, svcs
}

func newAuthRequest(t *testing.T, method, path, token string, data interface{}) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	if data != nil {
		if err := json.NewEncoder(&body).Encode(data); err != nil {
			t.Fatalf("encoding request body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func do(t *testing.T, srv http.Handler, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(t, method, tt.path, tt.token, tt.body)
	srv.ServeHTTP(rec, req)
	if tt.wantCode != 0 && rec.Code != tt.wantCode {
		t.Errorf("%s %s: code = %v; wantCode %v; body %s", method, tt.path, rec.Code, tt.wantCode, rec.Body.String())
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func getToken(t *testing.T, srv *echoapi.Server, usr user.User) string {
	t.Helper()
	token, err := srv.UserToken(usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}
