package api

import (
	"time"

	"gostat/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID reuses a valid incoming X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

var accessLogger = logging.New("API")

// AccessLog writes one line per request with its status and latency
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		accessLogger.Info("%s %s?%s -> %d (%s) id=%s",
			c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery,
			c.Writer.Status(), time.Since(start), c.GetString("requestID"))
	}
}
