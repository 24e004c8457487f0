package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const maxLoggedBodyLength = 500

// StatusClass groups HTTP statuses by what they mean to a test.
type StatusClass string

const (
	ClassSuccess         StatusClass = "success"
	ClassBadRequest      StatusClass = "bad request"
	ClassUnauthenticated StatusClass = "unauthenticated"
	ClassForbidden       StatusClass = "forbidden"
	ClassNotFound        StatusClass = "not found"
	ClassConflict        StatusClass = "conflict"
	ClassClientError     StatusClass = "other client error"
	ClassServerError     StatusClass = "server error"
	ClassOther           StatusClass = "other"
)

// ClassOf returns the class of an HTTP status. 400 and 422 are both bad requests, since
// frameworks differ in which one they use for a body that fails validation.
func ClassOf(status int) StatusClass {
	switch {
	case status >= 200 && status < 300:
		return ClassSuccess
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ClassBadRequest
	case status == http.StatusUnauthorized:
		return ClassUnauthenticated
	case status == http.StatusForbidden:
		return ClassForbidden
	case status == http.StatusNotFound:
		return ClassNotFound
	case status == http.StatusConflict:
		return ClassConflict
	case status >= 400 && status < 500:
		return ClassClientError
	case status >= 500 && status < 600:
		return ClassServerError
	default:
		return ClassOther
	}
}

// Response is a fully read HTTP response.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Class() StatusClass {
	return ClassOf(r.StatusCode)
}

func (r *Response) IsSuccess() bool {
	return r.Class() == ClassSuccess
}

// JSON parses the body loosely. A body that is not JSON becomes ldvalue.Null().
func (r *Response) JSON() ldvalue.Value {
	return ldvalue.Parse(r.Body)
}

// Decode unmarshals the body into target.
func (r *Response) Decode(target interface{}) error {
	if err := json.Unmarshal(r.Body, target); err != nil {
		return fmt.Errorf("malformed JSON in response to %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %s -> %d %s", r.Method, r.Path, r.StatusCode, truncate(r.BodyString()))
}

func truncate(s string) string {
	if len(s) <= maxLoggedBodyLength {
		return s
	}
	return s[:maxLoggedBodyLength] + "..."
}
