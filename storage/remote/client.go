package remoterepos

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/session"
	"github.com/unidash/unidash/core/university"
)

// Client wraps the upstream universities API: it builds authenticated JSON
// requests and surfaces transport failures, non-2xx statuses and
// success:false envelopes identically, as plain errors carrying the server
// or transport message.
type Client struct {
	baseURL string
	http    *http.Client
	sess    *session.Session
	log     core.Logger
}

func NewClient(conf *core.Config, sess *session.Session, logger core.Logger) *Client {
	return &Client{
		baseURL: conf.Upstream.BaseURL,
		http:    &http.Client{Timeout: conf.Upstream.Timeout},
		sess:    sess,
		log:     logger,
	}
}

// envelope covers both upstream response shapes: the page envelope
// {data, pagination} and the single envelope {data, success, message}.
type envelope struct {
	Success    *bool                  `json:"success"`
	Message    string                 `json:"message"`
	Data       json.RawMessage        `json:"data"`
	Pagination *university.Pagination `json:"pagination"`

	code int
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (envelope, error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return envelope{}, errors.Wrapf(err, "encoding %s %s body", method, path)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, reqBody)
	if err != nil {
		return envelope{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, method, path)
}

// doMultipart uploads a file as multipart/form-data.
func (c *Client) doMultipart(ctx context.Context, path, fieldName, filename string, file io.Reader) (envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fieldName, filename)
	if err != nil {
		return envelope{}, errors.Wrap(err, "creating multipart body")
	}
	if _, err = io.Copy(part, file); err != nil {
		return envelope{}, errors.Wrap(err, "writing multipart body")
	}
	if err = w.Close(); err != nil {
		return envelope{}, errors.Wrap(err, "closing multipart body")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return envelope{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, http.MethodPost, path)
}

// doRaw fetches a non-JSON payload (file downloads).
func (c *Client) doRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s: reading response", path)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var env envelope
		_ = json.Unmarshal(data, &env)
		return nil, errors.Errorf("GET %s: %s", path, messageOr(env.Message, resp.StatusCode))
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.sess.Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, method, path string) (envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, errors.Wrapf(err, "%s %s: reading response", method, path)
	}

	var env envelope
	if len(data) > 0 {
		_ = json.Unmarshal(data, &env) // a non-JSON error body still carries the status
	}
	env.code = resp.StatusCode

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return env, errors.Errorf("%s %s: %s", method, path, messageOr(env.Message, resp.StatusCode))
	}
	if env.Success != nil && !*env.Success {
		return env, errors.Errorf("%s %s: %s", method, path, messageOr(env.Message, resp.StatusCode))
	}
	return env, nil
}

func messageOr(msg string, code int) string {
	if msg != "" {
		return msg
	}
	return http.StatusText(code)
}
