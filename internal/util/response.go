package util

import (
	"errors"
	"net/http"

	"hospital_training_portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope every gateway endpoint answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// FromError maps the gateway error taxonomy onto HTTP responses. Session
// expiry becomes 401 so the caller knows to re-login; validation failures
// become 400; upstream failures keep the upstream status where sensible.
func FromError(c *gin.Context, err error) {
	var vErr *ValidationError
	var rErr *RequestError
	var pErr *PartialSubmissionError

	switch {
	case errors.Is(err, ErrAuthExpired), errors.Is(err, ErrNotAuthenticated):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNoQuestionnaire):
		Error(c, http.StatusNotFound, err.Error())
	case errors.As(err, &vErr):
		BadRequest(c, vErr.Error())
	case errors.As(err, &pErr):
		Error(c, http.StatusBadGateway, pErr.Error())
	case errors.As(err, &rErr):
		status := rErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		Error(c, status, rErr.Error())
	default:
		LogInternalError(c, err)
	}
}
