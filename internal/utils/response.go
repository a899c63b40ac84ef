package utils

import (
	"net/http"

	"bank-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Status  string              `json:"status"`
	Data    interface{}         `json:"data,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// NewSuccessResponse creates a new success Response instance.
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse creates a new error Response instance.
func NewErrorResponse(message string) Response {
	return Response{
		Status:  StatusError,
		Message: message,
	}
}

func RespondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(message, data))
}

func RespondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(message, data))
}

// RespondError writes err using the status carried by an AppError.
// Server errors are logged and answered with a generic message.
func RespondError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = NewInternalError("internal server error", err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Log.Error(appErr.Message,
			zap.Error(appErr.Err),
			zap.String("request_id", c.GetString("RequestID")),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(appErr.Status, NewErrorResponse("internal server error"))
		return
	}

	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields
	c.AbortWithStatusJSON(appErr.Status, resp)
}
