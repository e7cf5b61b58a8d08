package middleware

import (
	"time"

	"github.com/decred/slog"
	"github.com/gin-gonic/gin"
)

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) {
	log = logger
}

// RequestLogger logs one line per request to the HTTP subsystem logger.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		status := ctx.Writer.Status()
		latency := time.Since(start)
		switch {
		case status >= 500:
			log.Errorf("%s %s %d %v %s", ctx.Request.Method, path, status, latency, ctx.Errors.String())
		case status >= 400:
			log.Infof("%s %s %d %v", ctx.Request.Method, path, status, latency)
		default:
			log.Debugf("%s %s %d %v", ctx.Request.Method, path, status, latency)
		}
	}
}
