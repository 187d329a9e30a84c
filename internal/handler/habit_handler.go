package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpal/internal/model"
	"habitpal/internal/service"
)

type HabitHandler struct {
	svc        *service.HabitService
	reportPath string
	logger     *zap.Logger
}

func NewHabitHandler(svc *service.HabitService, reportPath string, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{
		svc:        svc,
		reportPath: reportPath,
		logger:     logger,
	}
}

type habitView struct {
	Index         int     `json:"index"`
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Frequency     string  `json:"frequency"`
	TotalDays     int     `json:"total_days"`
	CompletedDays int     `json:"completed_days"`
	Progress      float64 `json:"progress"`
	ReminderTime  string  `json:"reminder_time"`
}

func newHabitView(index int, h model.Habit) habitView {
	return habitView{
		Index:         index,
		ID:            h.ID,
		Name:          h.Name,
		Frequency:     h.Frequency.String(),
		TotalDays:     h.TotalDays,
		CompletedDays: h.CompletedDays,
		Progress:      h.Progress(),
		ReminderTime:  h.ReminderTime,
	}
}

// indexOf finds the position of id in the current list, -1 if gone.
func (h *HabitHandler) indexOf(id string) int {
	for i, cur := range h.svc.ListHabits() {
		if cur.ID == id {
			return i
		}
	}
	return -1
}

// ListHabits handles GET /habits
func (h *HabitHandler) ListHabits(c *gin.Context) {
	habits := h.svc.ListHabits()

	out := make([]habitView, 0, len(habits))
	for i, habit := range habits {
		out = append(out, newHabitView(i, habit))
	}
	c.JSON(http.StatusOK, gin.H{"habits": out})
}

// AddHabit handles POST /habits
func (h *HabitHandler) AddHabit(c *gin.Context) {
	var req service.AddHabitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	habit, err := h.svc.AddHabit(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newHabitView(h.indexOf(habit.ID), habit))
}

// DeleteHabit handles DELETE /habits/:index
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	if err := h.svc.DeleteHabit(c.Request.Context(), index); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteHabit handles POST /habits/:index/complete
func (h *HabitHandler) CompleteHabit(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}

	habit, err := h.svc.MarkComplete(c.Request.Context(), index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newHabitView(index, habit))
}

// ExportReport handles POST /reports
// The body is optional; without a path the configured report file is used.
// A given path must be a bare file name and lands beside that file.
func (h *HabitHandler) ExportReport(c *gin.Context) {
	var req struct {
		Path string `json:"path"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	path, err := service.ReportPathIn(h.reportPath, req.Path)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.svc.ExportReport(c.Request.Context(), path); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
