package errno

import (
	"errors"
	"fmt"
	"strings"
)

// BizError is an error carrying a business code that adapters can map to a
// transport status.
type BizError interface {
	error
	Code() int
	Message() string
}

type simpleBizError struct {
	errno  *Errno
	cause  error
	detail string
}

// NewSimpleBizError wraps cause under the given errno. detail fills the %s
// placeholder of messages such as ErrParameterInvalid.
func NewSimpleBizError(e *Errno, cause error, detail string) BizError {
	return &simpleBizError{errno: e, cause: cause, detail: detail}
}

func (e *simpleBizError) Code() int { return e.errno.Code }

func (e *simpleBizError) Message() string {
	if strings.Contains(e.errno.Message, "%s") {
		return strings.TrimSpace(fmt.Sprintf(e.errno.Message, e.detail))
	}
	if e.detail != "" {
		return e.errno.Message + ": " + e.detail
	}
	return e.errno.Message
}

func (e *simpleBizError) Error() string {
	if e.cause != nil {
		return e.Message() + ": " + e.cause.Error()
	}
	return e.Message()
}

func (e *simpleBizError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.errno, e.cause}
	}
	return []error{e.errno}
}

// Code reports the business code of err, falling back to ErrUnknown.
func Code(err error) int {
	var biz BizError
	if errors.As(err, &biz) {
		return biz.Code()
	}
	var no *Errno
	if errors.As(err, &no) {
		return no.Code
	}
	return ErrUnknown.Code
}

// Message reports a client-safe message for err.
func Message(err error) string {
	var biz BizError
	if errors.As(err, &biz) {
		return biz.Message()
	}
	var no *Errno
	if errors.As(err, &no) {
		return strings.TrimSpace(strings.ReplaceAll(no.Message, "%s", ""))
	}
	return ErrInternalServer.Message
}
