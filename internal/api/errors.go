package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/habitlit/internal/errors"
)

// statusFor maps an engine error kind onto an HTTP status.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	body := gin.H{"error": err.Error()}
	if kind := apperrors.KindOf(err); kind != "" {
		body["kind"] = kind
	}
	if apperrors.IsRetryable(err) {
		body["retryable"] = true
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": apperrors.KindValidation})
}
