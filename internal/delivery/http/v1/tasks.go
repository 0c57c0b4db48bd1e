package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newServiceError(err))
		return
	}

	response := make([]models.Task, len(tasks))
	for i, task := range tasks {
		response[i] = *task
	}

	h.logger.Debug().
		Int("count", len(response)).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	draft := models.TaskDraft{
		Title:       req.Title,
		Description: req.Description,
	}
	err = draft.Validate()
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("rejected task draft")
		abort(c, newServiceError(err))
		return
	}

	task, err := h.tasks.CreateTask(c, draft)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("id", task.ID).
		Msg("created task")
	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError(errTaskIDRequired.Error()))
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	patch := models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	err = patch.Validate()
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("id", taskID).
			Msg("rejected task patch")
		abort(c, newServiceError(err))
		return
	}

	task, err := h.tasks.UpdateTask(c, taskID, patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("id", taskID).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("id", task.ID).
		Msg("updated task")
	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg("no task id provided")
		abort(c, newBadRequestError(errTaskIDRequired.Error()))
		return
	}

	err := h.tasks.DeleteTask(c, taskID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("id", taskID).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	h.logger.Info().
		Str("id", taskID).
		Msg("deleted task")
	c.Status(http.StatusNoContent)
}
