package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidhasia/misty-ems/internal/ems/repository"
	"github.com/kidhasia/misty-ems/internal/ems/service"
	"github.com/kidhasia/misty-ems/internal/storage"
)

// Handlers bundles the HTTP handlers behind a single constructor.
type Handlers struct {
	Auth   *AuthHandler
	Task   *TaskHandler
	Review *ReviewHandler
	Card   *CardHandler
	Health *HealthHandler
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.Services, store storage.Store, health *HealthHandler, logger *zap.Logger) *Handlers {
	return &Handlers{
		Auth:   NewAuthHandler(svc.Auth),
		Task:   NewTaskHandler(svc.Task, store, logger),
		Review: NewReviewHandler(svc.Review, svc.Export),
		Card:   NewCardHandler(svc.Card),
		Health: health,
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope. The HTTP status is the business code's
// leading three digits.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError writes a 500 envelope. Outside debug mode the detail stays
// in the logs and the response carries a generic message.
func InternalError(c *gin.Context, message string) {
	if !gin.IsDebugging() {
		message = "internal server error"
	}
	Error(c, 50000, message)
}

// GetUserID returns the authenticated user's id from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserEmail returns the authenticated user's email.
func GetUserEmail(c *gin.Context) string {
	email, _ := c.Get("user_email")
	if e, ok := email.(string); ok {
		return e
	}
	return ""
}

// GetRole returns the authenticated user's role.
func GetRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}

// serviceError maps the service failure classes onto the envelope.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrDuplicateEmail):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, "you do not own this resource")
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrInvalidResetCode),
		errors.Is(err, service.ErrResetCodeExpired),
		errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "record not found")
	default:
		InternalError(c, err.Error())
	}
}
