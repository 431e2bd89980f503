package remoterepos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/unidash/unidash/core"
)

func testAuthenticator(t *testing.T, handler http.Handler) *Authenticator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{}
	conf.Upstream.BaseURL = srv.URL
	conf.Upstream.Timeout = 5 * time.Second
	return NewAuthenticator(conf)
}

func TestAuthenticator_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotBody map[string]string
		a := testAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/admin/login" {
				t.Errorf("path = %q", r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"user":        map[string]string{"id": "1", "name": "Admin", "role": "admin"},
					"accessToken": "tok", "refreshToken": "ref",
				},
			})
		}))

		auth, err := a.Login(context.Background(), "admin@unidash.local", "admin123")
		if err != nil {
			t.Fatalf("Login() unexpected error = %v", err)
		}
		if gotBody["email"] != "admin@unidash.local" || gotBody["password"] != "admin123" {
			t.Errorf("payload = %v", gotBody)
		}
		if auth.AccessToken != "tok" || auth.User.Name != "Admin" {
			t.Errorf("auth = %+v", auth)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		a := testAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "invalid credentials"})
		}))
		_, err := a.Login(context.Background(), "admin@unidash.local", "nope")
		if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
			t.Errorf("error = %v, want the server message", err)
		}
	})

	t.Run("success flag false on 200", func(t *testing.T) {
		a := testAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "account locked"})
		}))
		if _, err := a.Login(context.Background(), "a@b.c", "x"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("missing token", func(t *testing.T) {
		a := testAuthenticator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]interface{}{}})
		}))
		if _, err := a.Login(context.Background(), "a@b.c", "x"); err == nil {
			t.Error("expected an error")
		}
	})
}
