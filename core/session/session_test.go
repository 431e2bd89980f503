package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/unidash/unidash/core"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeAuthn struct {
	auth   Auth
	err    error
	logins int
}

func (f *fakeAuthn) Login(_ context.Context, email, pwd string) (Auth, error) {
	f.logins++
	if f.err != nil {
		return Auth{}, f.err
	}
	return f.auth, nil
}

func testConfig() *core.Config {
	conf := &core.Config{}
	conf.Auth.Email = "admin@unidash.local"
	conf.Auth.Password = "admin123"
	return conf
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: expiresAt.Unix()})
	s, err := token.SignedString([]byte("upstream-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func TestSession_Token(t *testing.T) {
	ctx := context.Background()

	t.Run("auto-login on first use", func(t *testing.T) {
		authn := &fakeAuthn{auth: Auth{
			User:        User{ID: "1", Email: "admin@unidash.local"},
			AccessToken: signedToken(t, time.Now().Add(time.Hour)),
		}}
		s := NewSession(authn, testConfig(), nopLogger{})

		token := s.Token(ctx)
		if token == "" {
			t.Fatal("Token() = \"\", want a token")
		}
		if authn.logins != 1 {
			t.Errorf("logins = %d, want 1", authn.logins)
		}

		// a live token is reused, not re-acquired
		if again := s.Token(ctx); again != token {
			t.Errorf("Token() = %q, want the cached %q", again, token)
		}
		if authn.logins != 1 {
			t.Errorf("logins = %d, want still 1", authn.logins)
		}

		if usr := s.User(); usr.ID != "1" {
			t.Errorf("User().ID = %q, want \"1\"", usr.ID)
		}
	})

	t.Run("expired token triggers re-login", func(t *testing.T) {
		fresh := signedToken(t, time.Now().Add(time.Hour))
		authn := &fakeAuthn{auth: Auth{AccessToken: fresh}}
		s := NewSession(authn, testConfig(), nopLogger{})

		s.Set(Auth{AccessToken: signedToken(t, time.Now().Add(-time.Minute))})

		if token := s.Token(ctx); token != fresh {
			t.Errorf("Token() = %q, want the fresh token", token)
		}
		if authn.logins != 1 {
			t.Errorf("logins = %d, want 1", authn.logins)
		}
	})

	t.Run("about-to-lapse token renews early", func(t *testing.T) {
		fresh := signedToken(t, time.Now().Add(time.Hour))
		authn := &fakeAuthn{auth: Auth{AccessToken: fresh}}
		s := NewSession(authn, testConfig(), nopLogger{})

		// inside the 30s renewal leeway
		s.Set(Auth{AccessToken: signedToken(t, time.Now().Add(10*time.Second))})

		if token := s.Token(ctx); token != fresh {
			t.Errorf("Token() = %q, want the fresh token", token)
		}
	})

	t.Run("login failure returns empty token", func(t *testing.T) {
		authn := &fakeAuthn{err: errors.New("invalid credentials")}
		s := NewSession(authn, testConfig(), nopLogger{})

		if token := s.Token(ctx); token != "" {
			t.Errorf("Token() = %q, want \"\"", token)
		}
		// every call retries
		_ = s.Token(ctx)
		if authn.logins != 2 {
			t.Errorf("logins = %d, want 2", authn.logins)
		}
	})

	t.Run("login failure keeps stale token", func(t *testing.T) {
		stale := signedToken(t, time.Now().Add(-time.Minute))
		authn := &fakeAuthn{err: errors.New("upstream down")}
		s := NewSession(authn, testConfig(), nopLogger{})
		s.Set(Auth{AccessToken: stale})

		// the server gets to reject the stale token itself
		if token := s.Token(ctx); token != stale {
			t.Errorf("Token() = %q, want the stale token", token)
		}
	})

	t.Run("clear drops the session", func(t *testing.T) {
		authn := &fakeAuthn{auth: Auth{
			User:        User{ID: "1"},
			AccessToken: signedToken(t, time.Now().Add(time.Hour)),
		}}
		s := NewSession(authn, testConfig(), nopLogger{})
		_ = s.Token(ctx)

		s.Clear()
		if usr := s.User(); usr.ID != "" {
			t.Errorf("User() = %+v, want zero", usr)
		}
		_ = s.Token(ctx)
		if authn.logins != 2 {
			t.Errorf("logins = %d, want 2", authn.logins)
		}
	})
}

func Test_expired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "unparseable token is left for the server", token: "not-a-jwt", want: false},
		{name: "no expiry claim", token: mustToken(jwt.StandardClaims{}), want: false},
		{name: "future expiry", token: mustToken(jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()}), want: false},
		{name: "past expiry", token: mustToken(jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()}), want: true},
		{name: "inside the renewal leeway", token: mustToken(jwt.StandardClaims{ExpiresAt: time.Now().Add(10 * time.Second).Unix()}), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expired(tt.token); got != tt.want {
				t.Errorf("expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func mustToken(claims jwt.StandardClaims) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		panic(err)
	}
	return s
}
