package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/unidash/unidash/core"
)

var nowFunc = time.Now // mockable

// User is the upstream account the dashboard operates as.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Auth is a successful login result.
type Auth struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Authenticator is any service that can exchange credentials for an Auth.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Auth, error)
}

// Session holds the bearer token and user record for the process lifetime.
// It is passed explicitly to every outgoing request builder; nothing is kept
// in ambient storage. On first use with no token it logs in with the fixed
// credential pair from the configuration. An absent token is not an error:
// requests simply go out without the Authorization header.
type Session struct {
	mu    sync.Mutex
	authn Authenticator
	email string
	pwd   string
	log   core.Logger

	auth Auth
}

func NewSession(authn Authenticator, conf *core.Config, logger core.Logger) *Session {
	return &Session{
		authn: authn,
		email: conf.Auth.Email,
		pwd:   conf.Auth.Password,
		log:   logger,
	}
}

// Token returns the current bearer token, acquiring or refreshing the
// session first when needed. Returns "" when no session can be established.
func (s *Session) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auth.AccessToken != "" && !expired(s.auth.AccessToken) {
		return s.auth.AccessToken
	}

	auth, err := s.authn.Login(ctx, s.email, s.pwd)
	if err != nil {
		s.log.Warn(fmt.Sprintf("auto-login failed: %v", err), err)
		return s.auth.AccessToken
	}
	s.auth = auth
	s.log.Info(fmt.Sprintf("session established for %s", auth.User.Email), auth.User)
	return s.auth.AccessToken
}

func (s *Session) User() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.User
}

func (s *Session) Set(auth Auth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = Auth{}
}

// expired inspects the token's registered claims without verifying the
// signature (the upstream API owns the key); a token that cannot be parsed
// or carries no expiry is treated as still usable and left for the server
// to reject.
func expired(token string) bool {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	// renew a little early to avoid sending a token about to lapse
	return nowFunc().Add(30 * time.Second).Unix() >= claims.ExpiresAt
}
