package server

import (
	"errors"
	"net/http"
	"time"

	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errMissingIdentity = errors.New("missing " + utils.UserIDHeader + " header")

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"user_id": utils.UserID(c),
		"latency": time.Since(start).String(),
	})
}

// TracingMiddleware opens a span per request so store calls nest under it
func TracingMiddleware(c *gin.Context) {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	ctx, span := otel.Tracer("auction-engine/http").Start(c.Request.Context(), c.Request.Method+" "+route)
	defer span.End()

	c.Request = c.Request.WithContext(ctx)
	c.Next()

	status := c.Writer.Status()
	span.SetAttributes(
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// IdentityMiddleware trusts the user id forwarded by the auth gateway.
// Requests without one continue as guests.
func IdentityMiddleware(c *gin.Context) {
	if id := c.GetHeader(utils.UserIDHeader); id != "" {
		c.Set(utils.UserIDKey, id)
	}
	c.Next()
}

// RequireUser rejects guest requests on routes that change state
func RequireUser(c *gin.Context) {
	if utils.UserID(c) == "" {
		utils.JSONError(c, http.StatusUnauthorized, errMissingIdentity, "authentication required")
		c.Abort()
		return
	}
	c.Next()
}
