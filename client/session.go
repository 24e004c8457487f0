// Package client sends requests to the backend on behalf of one identity.
//
// A Session holds the bearer credential of whoever logged in through it. Requests made with
// WithAuth carry that credential; requests made with WithoutAuth, or made inside Detach, do not.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/stadtwache/admin-contract-tests/framework"
	"github.com/stadtwache/admin-contract-tests/metrics"
	"github.com/stadtwache/admin-contract-tests/schema"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

const (
	DefaultTimeout    = time.Second * 10
	DefaultMaxRetries = 2
	DefaultRetryBase  = time.Millisecond * 250
)

// Config contains the transport settings shared by every Session created from it.
type Config struct {
	// BaseURL is the API root, such as "https://host/api". Request paths are appended to it.
	BaseURL string

	// Timeout bounds each attempt of each request.
	Timeout time.Duration

	// MaxRetries is how many times a request is retried after a transport error. Only
	// idempotent requests are retried, and HTTP error responses never are.
	MaxRetries uint64

	// RetryBase is the first delay of the exponential backoff between retries.
	RetryBase time.Duration

	Logger     framework.Logger
	Metrics    *metrics.Recorder
	HTTPClient *http.Client
}

// Credentials are the email and password of an account on the backend.
type Credentials struct {
	Email    string
	Password string
}

// Session is the state of one logged-in (or not yet logged-in) identity.
type Session struct {
	config     Config
	httpClient *http.Client
	credential string
	identity   servicedef.User
	detached   bool
}

// RequestConfig says how a single request is sent. Get one from WithAuth or WithoutAuth.
type RequestConfig struct {
	bearer string
	logger framework.Logger
}

func NewSession(config Config) *Session {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryBase <= 0 {
		config.RetryBase = DefaultRetryBase
	}
	if config.Logger == nil {
		config.Logger = framework.NullLogger()
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	return &Session{
		config:     config,
		httpClient: httpClient,
	}
}

// NewSibling returns an unauthenticated Session that uses the same transport settings.
func (s *Session) NewSibling() *Session {
	return &Session{
		config:     s.config,
		httpClient: s.httpClient,
	}
}

func (s *Session) Logger() framework.Logger {
	return s.config.Logger
}

// SetLogger changes where the session logs its requests, and returns the previous Logger.
func (s *Session) SetLogger(logger framework.Logger) framework.Logger {
	previous := s.config.Logger
	if logger == nil {
		logger = framework.NullLogger()
	}
	s.config.Logger = logger
	return previous
}

func (s *Session) BaseURL() string {
	return s.config.BaseURL
}

// Authenticate logs in. On success the returned token and user become the session's credential
// and identity. A non-2xx response is returned as an *AuthError and leaves the session unchanged.
func (s *Session) Authenticate(ctx context.Context, creds Credentials) error {
	params := servicedef.LoginParams{Email: creds.Email, Password: creds.Password}
	resp, err := s.Do(ctx, s.WithoutAuth(), http.MethodPost, servicedef.PathLogin, params)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &AuthError{Status: resp.StatusCode, Body: resp.BodyString()}
	}
	if err := schema.Validate(schema.Login, resp.Body); err != nil {
		return &AuthError{Status: resp.StatusCode, Body: resp.BodyString(), Reason: err.Error()}
	}
	var login servicedef.LoginResponse
	if err := resp.Decode(&login); err != nil {
		return &AuthError{Status: resp.StatusCode, Body: resp.BodyString(), Reason: err.Error()}
	}
	s.credential = login.AccessToken
	s.identity = login.User
	s.config.Logger.Printf("Logged in as %s (role %q)", creds.Email, login.User.Role)
	return nil
}

// Logout forgets the credential and identity. The backend is not contacted.
func (s *Session) Logout() {
	s.credential = ""
	s.identity = servicedef.User{}
}

// Authenticated is true if the session holds a credential, whether or not it is attached.
func (s *Session) Authenticated() bool {
	return s.credential != ""
}

func (s *Session) Identity() servicedef.User {
	return s.identity
}

func (s *Session) IsAdmin() bool {
	return s.Authenticated() && s.identity.Role == servicedef.RoleAdmin
}

// Attached is true if requests made with WithAuth will carry the credential right now.
func (s *Session) Attached() bool {
	return s.credential != "" && !s.detached
}

// Detach runs action with the credential detached, so that WithAuth produces unauthenticated
// requests. The credential is attached again when action returns or panics.
func (s *Session) Detach(action func()) {
	previous := s.detached
	s.detached = true
	defer func() {
		s.detached = previous
	}()
	action()
}

// WithAuth returns a request configuration that carries the credential, if there is one and it
// is currently attached.
func (s *Session) WithAuth() RequestConfig {
	if !s.Attached() {
		return RequestConfig{logger: s.config.Logger}
	}
	return RequestConfig{bearer: s.credential, logger: s.config.Logger}
}

// WithoutAuth returns a request configuration that never carries a credential.
func (s *Session) WithoutAuth() RequestConfig {
	return RequestConfig{logger: s.config.Logger}
}

// Authenticated is true if requests sent with this configuration carry a credential.
func (c RequestConfig) Authenticated() bool {
	return c.bearer != ""
}
