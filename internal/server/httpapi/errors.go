package httpapi

import (
	"errors"
	"net/http"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorNotAuthenticated),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrWebhookValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNoTranscript),
		errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrTranscription),
		errors.Is(err, common.ErrEnhancement):
		return http.StatusBadGateway
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": msg}. Internal failures are not echoed.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = common.ErrorInternal.Error()
	}
	respondMessage(c, status, msg)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// bindJSON decodes the body into dst and answers 400 itself on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			respondError(c, err)
			return false
		}
		respondMessage(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
