package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"habitpal/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

// NewRouter wires the local API. With an empty tokenSecret every route is
// open; otherwise everything except health and metrics needs a bearer token.
// brokerUp reports broker connectivity for /readyz and may be nil.
func NewRouter(
	habitHandler *handler.HabitHandler,
	reminderHandler *handler.ReminderHandler,
	profileHandler *handler.ProfileHandler,
	tokenSecret string,
	brokerUp func() bool,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), LoggingMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		if brokerUp != nil && !brokerUp() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "broker_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	if tokenSecret != "" {
		api.Use(AuthMiddleware(tokenSecret))
	}
	{
		api.GET("/habits", habitHandler.ListHabits)
		api.POST("/habits", habitHandler.AddHabit)
		api.DELETE("/habits/:index", habitHandler.DeleteHabit)
		api.POST("/habits/:index/complete", habitHandler.CompleteHabit)
		api.POST("/reports", habitHandler.ExportReport)

		api.GET("/profile", profileHandler.GetProfile)
		api.PUT("/profile", profileHandler.SaveProfile)

		api.GET("/reminders", reminderHandler.ListReminders)
		api.POST("/reminders/reschedule", reminderHandler.Reschedule)
		api.GET("/reminders/prompts", reminderHandler.ListPrompts)
		api.POST("/reminders/prompts/:id", reminderHandler.Respond)
		api.GET("/reminders/events", reminderHandler.Events)
	}

	return &Router{Engine: r}
}
