package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-sync/internal/models"
	"github.com/adanyl0v/go-todo-sync/internal/services"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errTaskIDRequired     = errors.New("task id required")
)

type apiError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{"error": err.Message}
	if len(err.Fields) > 0 {
		body["fields"] = err.Fields
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

// newServiceError maps a task service or validation failure to the
// response the client gateway expects.
func newServiceError(err error) apiError {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		apiErr := newBadRequestError(verr.Error())
		apiErr.Fields = verr.Fields
		return apiErr
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(services.ErrTaskNotFound.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
