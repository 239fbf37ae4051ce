package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	UpgradeAccepted = "accepted"
	UpgradeRefused  = "refused"
)

// AccessLog logs every bridge request and records it in the metrics.
// A WebSocket upgrade returns only once the relay connection ends, so it is
// logged as a connection with its lifetime rather than as a request.
func AccessLog(logger zerolog.Logger, node string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		upgrade := websocket.IsWebSocketUpgrade(c.Request)
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		if upgrade {
			outcome := UpgradeAccepted
			if status >= 400 {
				outcome = UpgradeRefused
			}
			RecordUpgrade(outcome)
			logger.Info().
				Str("outcome", outcome).
				Dur("lifetime", elapsed).
				Str("client_ip", c.ClientIP()).
				Msg("relay connection")
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(node, c.Request.Method, path, status, elapsed)

		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", elapsed).
			Msg("http request")
	}
}
