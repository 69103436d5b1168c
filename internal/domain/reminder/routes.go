package reminder

import "github.com/gin-gonic/gin"

// RegisterInternalRoutes expects a group guarded by the internal token.
func RegisterInternalRoutes(internal *gin.RouterGroup, handler *Handler) {
	internal.POST("/bookings/:id/reminders", handler.Schedule)
}
