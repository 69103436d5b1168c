package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"petmemorial/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(t *testing.T, svc *jwt.Service, reachable bool) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(svc))
	router.GET("/protected", func(c *gin.Context) {
		if !reachable {
			t.Fatal("handler should not be reached")
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64(ContextUserID),
			"role":    c.GetString(ContextRole),
		})
	})
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	// Arrange
	jwtService := jwt.New("test-secret-123", 1*time.Hour)
	validToken, _ := jwtService.GenerateToken(42, jwt.RoleFurParent)
	router := protectedRouter(t, jwtService, true)

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "fur_parent")
}

func TestJWTAuth_QueryToken(t *testing.T) {
	jwtService := jwt.New("test-secret-123", 1*time.Hour)
	token, _ := jwtService.GenerateToken(7, jwt.RoleBusiness)
	router := protectedRouter(t, jwtService, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected?access_token="+token, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "business")
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	router := protectedRouter(t, jwt.New("wrong-secret", 1*time.Hour), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-jwt-here")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuth_NoToken(t *testing.T) {
	router := protectedRouter(t, jwt.New("secret", 1*time.Hour), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_HEADER_MISSING")
}

func TestJWTAuth_WrongFormat(t *testing.T) {
	router := protectedRouter(t, jwt.New("secret", 1*time.Hour), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dGVzdA==")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT")
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", jwt.RoleAdmin, http.StatusOK},
		{"business rejected", jwt.RoleBusiness, http.StatusForbidden},
		{"missing role", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(ContextRole, tt.role)
				}
				c.Next()
			}, AdminOnly())
			router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
