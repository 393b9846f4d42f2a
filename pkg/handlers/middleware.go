package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"umbraco-cms/pkg/logger"
	"umbraco-cms/pkg/services"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags the request context with an id and logs one line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		log := logger.WithContext(c.Request.Context())
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(attrs, "errors", c.Errors.String())...)
			return
		}
		log.Info("request", attrs...)
	}
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrContentNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, os.ErrExist):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoCurrentUser):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": msg + ": " + err.Error()})
}
