package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/mcq"
	"github.com/unidash/unidash/core/university"
	emailsvc "github.com/unidash/unidash/services/email"
	inmemdb "github.com/unidash/unidash/storage/inmem"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestServer(t *testing.T) Server {
	t.Helper()

	conf := &core.Config{AppName: "Unidash", TestMode: true}
	conf.AdminEmail = "admin@unidash.local"
	conf.DefaultFromEmailStr = "noreply@unidash.local"

	repo := inmemdb.NewUniversityRepository(inmemdb.OpenSeeded())
	bank := mcq.NewBank()
	mcq.Seed(bank)

	return NewServer(&Options{
		DisableReqLogs: true,
		Conf:           conf,
		Logger:         nopLogger{},
		UniSvc:         university.NewService(repo, nopLogger{}),
		Bank:           bank,
		MailSvc:        emailsvc.NewConsoleServiceMock(conf),
	})
}

func doRequest(t *testing.T, s Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, s Server, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func checkCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status code %d, got %d (body %s)", want, rec.Code, rec.Body.String())
	}
}
