package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petmemorial/internal/pkg/logger"
	"petmemorial/internal/pkg/response"
)

// InternalTokenAuth protects service-to-service endpoints with a static bearer token.
// An empty allowedIPs list accepts every client address.
func InternalTokenAuth(expected string, allowedIPs []string, l *zap.Logger) gin.HandlerFunc {
	l = logger.OrNop(l)
	allowed := make(map[string]struct{}, len(allowedIPs))
	for _, ip := range allowedIPs {
		allowed[ip] = struct{}{}
	}

	return func(c *gin.Context) {
		if len(allowed) > 0 {
			if _, ok := allowed[c.ClientIP()]; !ok {
				logAuthFailure(c, l, http.StatusForbidden, "ip_not_allowed")
				response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "IP not allowed")
				return
			}
		}

		if expected == "" {
			logAuthFailure(c, l, http.StatusInternalServerError, "token_not_configured")
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal token is not configured")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logAuthFailure(c, l, http.StatusUnauthorized, "missing_auth")
			response.Abort(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required")
			return
		}

		token := bearerToken(authHeader)
		if token == "" {
			logAuthFailure(c, l, http.StatusUnauthorized, "invalid_auth_format")
			response.Abort(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			logAuthFailure(c, l, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logAuthFailure(c *gin.Context, l *zap.Logger, status int, reason string) {
	l.Warn("internal auth rejected",
		zap.Int("status", status),
		zap.String("request_id", RequestIDFrom(c)),
		zap.String("client_ip", c.ClientIP()),
		zap.String("reason", reason),
	)
}
