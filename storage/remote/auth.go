package remoterepos

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/session"
)

const loginPath = "/auth/admin/login"

// Authenticator logs in against the upstream admin auth endpoint. It holds
// its own plain HTTP client so the session it feeds can be injected into
// Client without a construction cycle.
type Authenticator struct {
	baseURL string
	http    *http.Client
}

var _ session.Authenticator = (*Authenticator)(nil)

func NewAuthenticator(conf *core.Config) *Authenticator {
	return &Authenticator{
		baseURL: conf.Upstream.BaseURL,
		http:    &http.Client{Timeout: conf.Upstream.Timeout},
	}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (session.Auth, error) {
	payload, err := json.Marshal(struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password})
	if err != nil {
		return session.Auth{}, errors.Wrap(err, "encoding login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return session.Auth{}, errors.Wrap(err, "building login request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return session.Auth{}, errors.Wrap(err, "logging in")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return session.Auth{}, errors.Wrap(err, "reading login response")
	}

	var body struct {
		Success *bool        `json:"success"`
		Message string       `json:"message"`
		Data    session.Auth `json:"data"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return session.Auth{}, errors.Errorf("login: %s", messageOr(body.Message, resp.StatusCode))
	}
	if body.Success != nil && !*body.Success {
		return session.Auth{}, errors.Errorf("login: %s", messageOr(body.Message, resp.StatusCode))
	}
	if body.Data.AccessToken == "" {
		return session.Auth{}, errors.New("login: no access token in response")
	}
	return body.Data, nil
}
