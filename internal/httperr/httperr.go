package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusClientClosedRequest is the non-standard status logged when the
// client disconnects before the response is written.
const StatusClientClosedRequest = 499

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err using the error kind and business code only.
// Wrapped causes never reach the caller.
func Respond(c *gin.Context, err error) {
	var be BusinessError
	if !errors.As(err, &be) {
		Internal(c, "internal_error", "Unexpected error.")
		return
	}

	msg := be.Message
	if msg == "" {
		msg = be.Code
	}
	Write(c, StatusFor(be.Kind), be.Code, msg)
}
