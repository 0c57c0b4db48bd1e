package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/services"
)

type Handler interface {
	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	tasks  services.TaskService
}

func New(
	logger zerolog.Logger,
	taskService services.TaskService,
) Handler {
	return &handlerImpl{
		logger: logger,
		tasks:  taskService,
	}
}

// RegisterRoutes mounts the task collection resource on router.
func RegisterRoutes(router gin.IRouter, h Handler) {
	tasks := router.Group("/tasks")
	tasks.GET("", h.HandleGetTasks)
	tasks.POST("", h.HandleCreateTask)
	tasks.PATCH("/:id", h.HandleUpdateTask)
	tasks.PUT("/:id", h.HandleUpdateTask)
	tasks.DELETE("/:id", h.HandleDeleteTask)
}
