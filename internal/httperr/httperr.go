package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

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

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// WriteBusiness maps a BusinessError to its HTTP status by kind.
// A conflict discovered at commit time is reported as "slot just
// taken", never as a system fault.
func WriteBusiness(c *gin.Context, err error, message string) {
	kind, ok := KindOf(err)
	if !ok {
		Internal(c, "internal_error", message)
		return
	}

	switch kind {
	case KindConflict:
		Write(c, http.StatusConflict, err.Error(), message)
	case KindPolicy:
		Write(c, http.StatusUnprocessableEntity, err.Error(), message)
	case KindUnavailable:
		Write(c, http.StatusServiceUnavailable, err.Error(), message)
	default:
		Write(c, http.StatusBadRequest, err.Error(), message)
	}
}
