package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/response"
)

// ErrorLogger logs failed requests and recovers from panics.
func ErrorLogger(l *zap.Logger) gin.HandlerFunc {
	l = logger.OrNop(l)
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				l.Error("request panic",
					append(requestFields(c, start), zap.String("panic", fmt.Sprintf("%v", recovered)), zap.Stack("stack"))...,
				)
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					l.Error("request failed", requestFields(c, start)...)
				}
				return
			}

			for _, err := range c.Errors {
				l.Error("request error", append(requestFields(c, start), zap.Error(err.Err))...)
			}
		}()

		c.Next()
	}
}

// AccessLog writes one line per request. Streaming endpoints log when the stream closes.
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	l = logger.OrNop(l)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("request", requestFields(c, start)...)
	}
}

func requestFields(c *gin.Context, start time.Time) []zap.Field {
	return []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
		zap.Int64("user_id", c.GetInt64(ContextUserID)),
		zap.String("role", c.GetString(ContextRole)),
		zap.String("request_id", RequestIDFrom(c)),
		zap.Duration("latency", time.Since(start)),
	}
}
