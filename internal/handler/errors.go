package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpal/internal/reminder"
	"habitpal/internal/service"
	"habitpal/pkg/logger"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrIndexOutOfRange),
		errors.Is(err, reminder.ErrUnknownDecision):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrHabitNotFound),
		errors.Is(err, reminder.ErrPromptNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, reminder.ErrSchedulerClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...} with the status mapped from err.
func respondError(c *gin.Context, l *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithTrace(c.Request.Context(), l).Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
