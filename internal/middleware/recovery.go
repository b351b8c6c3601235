package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"redesperanza/web/internal/guard"
)

const internalErrorMessage = "Ocurrió un error inesperado. Intenta de nuevo más tarde."

// Recovery builds on gin's recovery, which already drops broken client
// connections, and answers panics in the format the caller asked for.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Bytes("stack", debug.Stack()).
			Str("request_id", GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")

		if guard.WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			return
		}
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(internalErrorMessage))
		c.Abort()
	})
}
