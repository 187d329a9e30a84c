package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpal/internal/model"
	"habitpal/internal/service"
)

type ProfileHandler struct {
	svc    *service.HabitService
	logger *zap.Logger
}

func NewProfileHandler(svc *service.HabitService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.svc.LoadProfile(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SaveProfile handles PUT /profile
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	var req model.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.svc.SaveProfile(c.Request.Context(), req.Name, req.Email, req.Gender)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
