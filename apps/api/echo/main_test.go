package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/tracked-edu/tracked/apps/api/echo"
	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/metrics"
	"github.com/tracked-edu/tracked/core/module"
	"github.com/tracked-edu/tracked/core/reminder"
	"github.com/tracked-edu/tracked/core/session"
	"github.com/tracked-edu/tracked/core/tutor"
	"github.com/tracked-edu/tracked/core/user"
	"github.com/tracked-edu/tracked/services/email"
	"github.com/tracked-edu/tracked/services/logger"
	"github.com/tracked-edu/tracked/services/monitoring"
	"github.com/tracked-edu/tracked/tests"
)

const pwd = "Secr3t-pass"

type tutorClientMock struct {
	reply string
	err   error
}

func (c *tutorClientMock) Complete(context.Context, tutor.Request) (string, error) {
	return c.reply, c.err
}

type fixture struct {
	app   *echoapi.Server
	conf  *core.Config
	repos  testutil.Repos
	tutor  *tutorClientMock
	mailer *emailsvc.ConsoleService
}

func setup(t *testing.T) fixture {
	conf := core.NewTestConfig()
	repos := testutil.NewRepos()
	validate, translator := testutil.NewValidator()
	logger := logsvc.NewNopLogger()
	client := &tutorClientMock{reply: "Cells divide."}
	mailer := emailsvc.NewConsoleService(conf, io.Discard)

	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Monitor:     monitoring.New(),
		Mailer:      mailer,
		UserSvc:     user.NewService(repos.Users, validate),
		ModuleSvc:   module.NewService(repos.Modules, validate),
		SessionSvc:  session.NewService(repos.Sessions, repos.Modules, validate),
		ReminderSvc: reminder.NewService(repos.Reminders, repos.Modules, validate),
		MetricsSvc:  metrics.NewService(repos.Sessions, repos.Modules),
		TutorSvc:    tutor.NewService(client, repos.Modules, validate, logger, conf.Tutor.Temperature),
		Validate:    validate,
		Translator:  translator,
	})
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	return fixture{app: app, conf: conf, repos: repos, tutor: client, mailer: mailer}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (f fixture) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f fixture) getToken(t *testing.T, usr user.User) string {
	token, err := echoapi.GenerateToken(f.conf, echoapi.NewUserClaims(f.conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, f fixture, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.do(tt.method, tt.path, tt.token, tt.body))
		})
	}
}
