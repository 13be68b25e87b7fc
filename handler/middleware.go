package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chat-relay/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// correlationID echoes the caller's X-Correlation-Id or mints a UUID, and
// stores it on the request context for logging and the exchange journal.
func correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(correlationHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(usecase.WithCorrelationID(c.Request.Context(), id))
		c.Header(correlationHeader, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		switch path := c.Request.URL.Path; {
		case c.Writer.Status() >= 500:
			level = slog.LevelError
		case path == "/healthz" || path == "/metrics":
			level = slog.LevelDebug
		}
		ctx := c.Request.Context()
		logger.Log(ctx, level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
			"correlationId", usecase.CorrelationID(ctx),
		)
	}
}
