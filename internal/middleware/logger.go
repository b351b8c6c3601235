package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/auth"
)

// Logger writes one access line per request and puts a request-scoped logger
// on the context for zerolog.Ctx. Paths in quiet are logged at debug level
// unless they fail.
func Logger(log zerolog.Logger, quiet ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqLog := log.With().Str("request_id", GetRequestID(c)).Logger()
		c.Request = c.Request.WithContext(reqLog.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = reqLog.Error()
		case status >= 400:
			event = reqLog.Warn()
		case skip[path]:
			event = reqLog.Debug()
		default:
			event = reqLog.Info()
		}

		if route := c.FullPath(); route != "" {
			event = event.Str("route", route)
		}
		if user := auth.FromGin(c).CurrentUser(); user != nil {
			event = event.Str("user_id", user.ID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			event = event.Str("errors", errs.String())
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
