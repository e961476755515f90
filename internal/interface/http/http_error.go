package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/astro-profile/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var codeStatus = map[string]int{
	apperrors.CodeInvalidInput:         http.StatusBadRequest,
	apperrors.CodeGeocodingNotFound:    http.StatusNotFound,
	apperrors.CodeGeocodingUnavailable: http.StatusServiceUnavailable,
	apperrors.CodeProfileNotFound:      http.StatusNotFound,
	apperrors.CodeProfileError:         http.StatusInternalServerError,
	apperrors.CodeInvalidToken:         http.StatusForbidden,
	apperrors.CodeUnauthorized:         http.StatusUnauthorized,
}

// fromAppError maps domain error codes to transport errors. Server-side
// failures only expose the top-level message.
func fromAppError(err error) *HTTPError {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return asHTTPError(err)
	}
	status, ok := codeStatus[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := errMessage(err)
	if status >= http.StatusInternalServerError {
		message = appErr.Message
	}
	return NewHTTPError(status, appErr.Code, message, err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
