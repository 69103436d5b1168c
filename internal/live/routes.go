package live

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the live endpoints on an authenticated group.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	protected.GET("/notifications/stream", handler.Stream)
	protected.GET("/notifications/ws", handler.WebSocket)
}
