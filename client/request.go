package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/sethvargo/go-retry"
)

const redactedCredential = "Bearer <redacted>"

// Get sends a GET request with the session's credential, if attached.
func (s *Session) Get(ctx context.Context, path string) (*Response, error) {
	return s.Do(ctx, s.WithAuth(), http.MethodGet, path, nil)
}

// Post sends a POST request with a JSON body and the session's credential, if attached.
func (s *Session) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return s.Do(ctx, s.WithAuth(), http.MethodPost, path, body)
}

// Put sends a PUT request with a JSON body and the session's credential, if attached.
func (s *Session) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return s.Do(ctx, s.WithAuth(), http.MethodPut, path, body)
}

// Do sends a request and reads the whole response. Any HTTP status is a successful result; the
// error is non-nil only if no response was received, in which case it is a *TransportError.
func (s *Session) Do(
	ctx context.Context,
	config RequestConfig,
	method string,
	path string,
	body interface{},
) (*Response, error) {
	logger := config.logger
	if logger == nil {
		logger = s.config.Logger
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = data
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	if payload != nil {
		headers.Set("Content-Type", "application/json")
	}
	if config.bearer != "" {
		headers.Set("Authorization", "Bearer "+config.bearer)
	}
	url := s.config.BaseURL + path
	logger.Printf(">> %s", curlCommand(method, url, headers, payload))

	maxRetries := uint64(0)
	if isIdempotent(method) {
		maxRetries = s.config.MaxRetries
	}
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(s.config.RetryBase))

	var resp *Response
	attempts := 0
	started := time.Now()
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		r, err := s.roundTrip(ctx, method, url, headers, payload)
		if err != nil {
			logger.Printf("<< %s %s attempt %d failed: %s", method, path, attempts, err)
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		s.config.Metrics.ObserveTransportError(method, path)
		return nil, &TransportError{Method: method, Path: path, Attempts: attempts, Err: err}
	}
	resp.Path = path
	s.config.Metrics.ObserveRequest(method, path, resp.StatusCode, time.Since(started))
	logger.Printf("<< %d %s", resp.StatusCode, truncate(resp.BodyString()))
	return resp, nil
}

func (s *Session) roundTrip(
	ctx context.Context,
	method string,
	url string,
	headers http.Header,
	payload []byte,
) (*Response, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header = headers.Clone()
	httpResp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = httpResp.Body.Close() }()
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	return &Response{
		Method:     method,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// isIdempotent is true for methods that are safe to resend after a transport error. POST is not,
// since the first attempt may have created something before the connection broke.
func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// AwaitReachable polls the API root until the backend returns any HTTP response, printing
// progress to output. It does not care what the status is.
func (s *Session) AwaitReachable(ctx context.Context, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to backend at %s", s.config.BaseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := s.roundTrip(ctx, http.MethodGet, s.config.BaseURL+"/", make(http.Header), nil)
		if err == nil {
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Backend responded with status %d\n", resp.StatusCode)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return ctx.Err()
		case <-time.After(time.Millisecond * 100):
		}
	}
}

// IsTransportError is true if err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// curlCommand renders a request as a shell command that reproduces it, minus the credential.
func curlCommand(method, url string, headers http.Header, payload []byte) string {
	var b commandBuilder
	b.add("curl", "-sS", "-X", method)
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range headers[name] {
			if name == "Authorization" {
				value = redactedCredential
			}
			b.add("-H", name+": "+value)
		}
	}
	if payload != nil {
		b.add("--data", string(payload))
	}
	b.add(url)
	return b.String()
}
