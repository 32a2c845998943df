package davclient

import (
	"errors"
	"fmt"
)

var (
	ErrAuthChallenge        = errors.New("unusable digest challenge")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid credentials or server configuration")
)

// AuthChallengeError means the first 401 carried no usable Digest challenge.
type AuthChallengeError struct {
	Header string
	Err    error
}

func (e *AuthChallengeError) Error() string {
	return fmt.Sprintf("%s, header:%q, err:%v", ErrAuthChallenge.Error(), e.Header, e.Err)
}

func (e *AuthChallengeError) Is(target error) bool {
	return target == ErrAuthChallenge
}

func (e *AuthChallengeError) Unwrap() error {
	return e.Err
}

// WebDavError is a non-success status of a WebDAV operation.
type WebDavError struct {
	Op         string
	Path       string
	StatusCode int
	Status     string
}

func (e *WebDavError) Error() string {
	return fmt.Sprintf("%s failed, path:%s, status:%d %s", e.Op, e.Path, e.StatusCode, e.Status)
}

func newWebDavError(op string, path string, rsp *Response) *WebDavError {
	return &WebDavError{
		Op:         op,
		Path:       path,
		StatusCode: rsp.StatusCode,
		Status:     rsp.Status,
	}
}

// TransportError is a failure below HTTP: dial, dns, tls, broken body.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failed, method:%s, path:%s, err:%v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError means a response body could not be interpreted.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response failed, path:%s, err:%v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the http status carried by err, 0 if none.
func StatusCode(err error) int {
	var werr *WebDavError
	if errors.As(err, &werr) {
		return werr.StatusCode
	}
	return 0
}
