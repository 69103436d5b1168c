package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"petmemorial/internal/pkg/jwt"
	"petmemorial/internal/pkg/response"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuth validates the bearer token and stores user_id and role in the context.
// The access_token query parameter is accepted as well because browser
// EventSource and WebSocket clients cannot set an Authorization header.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw string
		if header := c.GetHeader("Authorization"); header != "" {
			raw = bearerToken(header)
			if raw == "" {
				response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
				return
			}
		} else {
			raw = strings.TrimSpace(c.Query("access_token"))
		}
		if raw == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
