// Package supabase is a thin client for the Supabase Auth (GoTrue) REST API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"jewelshot/internal/domain"
)

// Options configures the client.
type Options struct {
	URL     string
	AnonKey string
	Timeout time.Duration
	// HTTPClient replaces the transport used by resty, mostly for tests.
	HTTPClient *http.Client
}

// Client implements session.Provider against a Supabase project.
type Client struct {
	client *resty.Client
	now    func() time.Time
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *user  `json:"user"`
}

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Error            string `json:"error"`
}

// NewClient validates the project URL and anon key. It fails with
// domain.ErrSessionUnconfigured when either is missing or malformed.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	key := strings.TrimSpace(opts.AnonKey)
	if base == "" || key == "" {
		return nil, domain.ErrSessionUnconfigured
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid project url %q", domain.ErrSessionUnconfigured, base)
	}

	rc := resty.New()
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	rc.SetBaseURL(base+"/auth/v1").
		SetTimeout(timeout).
		SetHeader("apikey", key).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{client: rc, now: time.Now}, nil
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/token")
	if err != nil {
		return nil, transportError(ctx, "sign in", err)
	}
	if !res.IsSuccess() {
		return nil, authError(res)
	}
	var tok tokenResponse
	if err := json.Unmarshal(res.Body(), &tok); err != nil {
		return nil, fmt.Errorf("decode sign in response: %w", err)
	}
	return c.toSession(tok), nil
}

// SignUp registers an account. A nil session with no error means the
// project requires email confirmation before the first sign-in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/signup")
	if err != nil {
		return nil, transportError(ctx, "sign up", err)
	}
	if !res.IsSuccess() {
		return nil, authError(res)
	}
	var tok tokenResponse
	if err := json.Unmarshal(res.Body(), &tok); err != nil {
		return nil, fmt.Errorf("decode sign up response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, nil
	}
	return c.toSession(tok), nil
}

// SignOut revokes the access token server side.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	res, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post("/logout")
	if err != nil {
		return transportError(ctx, "sign out", err)
	}
	if !res.IsSuccess() {
		return authError(res)
	}
	return nil
}

// ResetPasswordForEmail asks the provider to send a recovery email.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email string) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		Post("/recover")
	if err != nil {
		return transportError(ctx, "reset password", err)
	}
	if !res.IsSuccess() {
		return authError(res)
	}
	return nil
}

// User resolves the account behind an access token.
func (c *Client) User(ctx context.Context, accessToken string) (*domain.Session, error) {
	res, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Get("/user")
	if err != nil {
		return nil, transportError(ctx, "get user", err)
	}
	if !res.IsSuccess() {
		return nil, authError(res)
	}
	var u user
	if err := json.Unmarshal(res.Body(), &u); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &domain.Session{UserID: u.ID, Email: u.Email, AccessToken: accessToken}, nil
}

func (c *Client) toSession(tok tokenResponse) *domain.Session {
	s := &domain.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	switch {
	case tok.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tok.ExpiresAt, 0)
	case tok.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	if tok.User != nil {
		s.UserID = tok.User.ID
		s.Email = tok.User.Email
	}
	return s
}

func authError(res *resty.Response) error {
	var body errorResponse
	_ = json.Unmarshal(res.Body(), &body)
	msg := firstNonEmpty(body.Msg, body.ErrorDescription, body.Message, body.Error)
	if msg == "" {
		msg = strings.TrimSpace(res.String())
	}
	return &domain.AuthError{Status: res.StatusCode(), Message: msg}
}

func transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrNetworkUnavailable, err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
