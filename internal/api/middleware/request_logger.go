package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

// RequestLogger tags each request with an id and logs it once it completes.
// Paths listed in quiet are only logged when they fail.
func RequestLogger(l *logrus.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}

	return func(c *gin.Context) {
		started := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set("request_id", id)

		if c.IsWebsocket() {
			l.WithFields(logrus.Fields{
				"request_id":   id,
				"route":        c.FullPath(),
				"interview_id": c.Param("id"),
			}).Info("websocket upgrade")
		}

		c.Next()

		status := c.Writer.Status()
		if skip[c.FullPath()] && status < 400 {
			return
		}

		fields := logrus.Fields{
			"request_id":  id,
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status":      status,
			"duration_ms": time.Since(started).Milliseconds(),
			"client_ip":   c.ClientIP(),
		}
		if uid := c.GetString("user_id"); uid != "" {
			fields["user_id"] = uid
		}
		if iv := c.Param("id"); iv != "" {
			fields["interview_id"] = iv
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := l.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("http request")
		case status >= 400:
			entry.Warn("http request")
		default:
			entry.Info("http request")
		}
	}
}
