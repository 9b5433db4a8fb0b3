package httperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stellar/go-stellar-sdk/support/log"
	"github.com/stellar/go-stellar-sdk/support/render/httpjson"
)

type HTTPError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	// Extras holds per-field details, e.g. validation errors.
	Extras map[string]any `json:"extras,omitempty"`
	// Err is the original error, kept for logs and errors.Is/As.
	Err error `json:"-"`
	// ErrorCode lets clients tell errors apart without parsing the message.
	ErrorCode string `json:"error_code,omitempty"`
}

// ReportErrorFunc reports unexpected errors, usually to the crash tracker.
type ReportErrorFunc func(ctx context.Context, err error, msg string)

var reportErrorFunc ReportErrorFunc = func(ctx context.Context, err error, msg string) {
	if msg != "" {
		err = fmt.Errorf("%s: %w", msg, err)
	}
	log.Ctx(ctx).WithStack(err).Errorf("%+v", err)
}

// SetDefaultReportErrorFunc replaces the function used by InternalError to report errors.
func SetDefaultReportErrorFunc(fn ReportErrorFunc) {
	reportErrorFunc = fn
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) WithErrorCode(code string) *HTTPError {
	e.ErrorCode = code
	return e
}

func (e *HTTPError) Render(w http.ResponseWriter) {
	httpjson.RenderStatus(w, e.StatusCode, e, httpjson.JSON)
}

// NewHTTPError returns originalErr itself when it is already an HTTPError with the same status code and nothing
// new is being added.
func NewHTTPError(statusCode int, msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" && originalErr != nil && len(extras) == 0 {
		var hErr *HTTPError
		if errors.As(originalErr, &hErr) && hErr.StatusCode == statusCode {
			return hErr
		}
	}

	return &HTTPError{
		StatusCode: statusCode,
		Message:    msg,
		Extras:     extras,
		Err:        originalErr,
	}
}

func NotFound(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "Resource not found."
	}
	return NewHTTPError(http.StatusNotFound, msg, originalErr, extras)
}

func BadRequest(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "The request was invalid in some way."
	}
	return NewHTTPError(http.StatusBadRequest, msg, originalErr, extras).WithErrorCode(Code400_0)
}

func TooManyRequests(msg string) *HTTPError {
	if msg == "" {
		msg = "Too many requests, please try again later."
	}
	return NewHTTPError(http.StatusTooManyRequests, msg, nil, nil).WithErrorCode(Code429_0)
}

// BadGateway is used when the verification provider did not give a usable answer.
func BadGateway(msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "The verification provider could not process this request."
	}
	return NewHTTPError(http.StatusBadGateway, msg, originalErr, extras)
}

func InternalError(ctx context.Context, msg string, originalErr error, extras map[string]any) *HTTPError {
	if msg == "" {
		msg = "An internal error occurred while processing this request."
	}
	reportErrorFunc(ctx, originalErr, msg)
	return NewHTTPError(http.StatusInternalServerError, msg, originalErr, extras).WithErrorCode(Code500_0)
}
