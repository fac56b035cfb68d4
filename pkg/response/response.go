// Package response writes the {code, message, data} JSON envelope used by every endpoint.
package response

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-graph/internal/service"
	"github.com/d60-Lab/social-graph/pkg/logger"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Business codes carried in the envelope next to the HTTP status.
const (
	CodeOK           = 0
	CodeBadRequest   = 40000
	CodeUnauthorized = 40100
	CodeForbidden    = 40300
	CodeNotFound     = 40400
	CodeTooMany      = 42900
	CodeInternal     = 50000
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "created", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: msg})
}

func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Code: CodeUnauthorized, Message: msg})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: CodeTooMany, Message: "too many requests"})
}

func NotFound(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

// InternalError hides err from the client and reports it to Sentry.
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	} else {
		sentry.CaptureException(err)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: "internal server error"})
}

// Error maps a service error kind to its status; anything untyped is a 500.
func Error(c *gin.Context, err error) {
	status, code := statusOf(service.KindOf(err))
	if status == http.StatusInternalServerError {
		InternalError(c, err)
		return
	}
	c.AbortWithStatusJSON(status, Response{Code: code, Message: err.Error()})
}

func statusOf(kind service.ErrorKind) (int, int) {
	switch kind {
	case service.KindSelfReference, service.KindDuplicateAction, service.KindAlreadyInState, service.KindValidation:
		return http.StatusBadRequest, CodeBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized, CodeUnauthorized
	case service.KindNotOwner:
		return http.StatusForbidden, CodeForbidden
	case service.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
