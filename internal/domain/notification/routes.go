package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the user-facing notification API on an authenticated group.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", handler.GetNotifications)
		notifGroup.GET("/unread-count", handler.GetUnreadCount)
		notifGroup.PATCH("/:id/read", handler.MarkAsRead)
		notifGroup.POST("/read-all", handler.MarkAllAsRead)
	}
}

// RegisterAdminRoutes expects a group already restricted to admins.
func RegisterAdminRoutes(admin *gin.RouterGroup, handler *AdminHandler) {
	g := admin.Group("/notifications")
	{
		g.GET("", handler.List)
		g.PATCH("/:id/read", handler.MarkAsRead)
		g.POST("/read-all", handler.MarkAllAsRead)
	}
}

// RegisterInternalRoutes expects a group guarded by the internal token.
func RegisterInternalRoutes(internal *gin.RouterGroup, handler *EventsHandler) {
	internal.POST("/notifications", handler.CreateNotification)

	events := internal.Group("/events")
	{
		events.POST("/booking", handler.BookingEvent)
		events.POST("/payment", handler.PaymentEvent)
		events.POST("/system", handler.SystemEvent)
		events.POST("/admin", handler.AdminEvent)
	}
}
