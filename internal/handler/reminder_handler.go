package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpal/internal/notifier"
	"habitpal/internal/reminder"
	"habitpal/internal/service"
)

const eventBuffer = 16

type ReminderHandler struct {
	svc    *service.HabitService
	hub    *notifier.Hub
	logger *zap.Logger
}

func NewReminderHandler(svc *service.HabitService, hub *notifier.Hub, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		svc:    svc,
		hub:    hub,
		logger: logger,
	}
}

// ListReminders handles GET /reminders
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reminders": h.svc.ReminderStatus()})
}

// ListPrompts handles GET /reminders/prompts
func (h *ReminderHandler) ListPrompts(c *gin.Context) {
	prompts := h.svc.OpenPrompts()
	if prompts == nil {
		prompts = []reminder.Prompt{}
	}
	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

// Reschedule handles POST /reminders/reschedule
func (h *ReminderHandler) Reschedule(c *gin.Context) {
	if err := h.svc.RescheduleAllReminders(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Respond handles POST /reminders/prompts/:id
func (h *ReminderHandler) Respond(c *gin.Context) {
	var req struct {
		Decision string `json:"decision" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	decision, err := reminder.ParseDecision(req.Decision)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	res, err := h.svc.RespondToReminder(c.Request.Context(), c.Param("id"), decision)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Events handles GET /reminders/events as a server-sent event stream.
func (h *ReminderHandler) Events(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := h.hub.Subscribe(eventBuffer)
	defer unsubscribe()

	w.WriteHeader(http.StatusOK)
	w.Flush()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Warn("Failed to encode reminder event", zap.Error(err))
				continue
			}
			w.Write([]byte("event: " + ev.Type + "\n"))
			w.Write([]byte("data: "))
			w.Write(data)
			w.Write([]byte("\n\n"))

			w.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
