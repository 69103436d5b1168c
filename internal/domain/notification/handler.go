package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/pkg/response"
)

const maxListLimit = 100

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotifications returns the caller's newest notifications and unread count.
// @Summary		List notifications
// @Description	Returns the caller's newest notifications, newest first, with the unread count.
// @Tags		Notifications
// @Security	BearerAuth
// @Param		limit	query	int	false	"Maximum number of notifications (default 10, max 100)"
// @Success		200	{object}	NotificationListResponse	"Notifications and unread count"
// @Failure		401	{object}	map[string]interface{}	"Authentication required"
// @Failure		500	{object}	map[string]interface{}	"Failed to load notifications"
// @Router		/notifications [GET]
func (h *Handler) GetNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	limit := DefaultListLimit
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = min(v, maxListLimit)
		}
	}

	list, unread, err := h.service.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get notifications")
		return
	}

	items := make([]NotificationResponse, len(list))
	for i, n := range list {
		items[i] = NotificationResponseFromEntity(n)
	}
	response.Success(c, http.StatusOK, NotificationListResponse{
		Notifications: items,
		UnreadCount:   unread,
	})
}

// GetUnreadCount returns the number of unread notifications.
// @Summary		Unread notification count
// @Description	Returns how many of the caller's notifications are unread.
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	UnreadCountResponse	"Unread count"
// @Failure		401	{object}	map[string]interface{}	"Authentication required"
// @Failure		500	{object}	map[string]interface{}	"Failed to count notifications"
// @Router		/notifications/unread-count [GET]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	unread, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get unread count")
		return
	}
	response.Success(c, http.StatusOK, UnreadCountResponse{UnreadCount: unread})
}

// MarkAsRead marks one of the caller's notifications as read. Repeating it is not an error;
// a notification that does not exist or belongs to someone else is a 404.
// @Summary		Mark notification as read
// @Description	Marks one of the caller's notifications as read. Marking an already read notification succeeds.
// @Tags		Notifications
// @Security	BearerAuth
// @Param		id	path	int	true	"Notification ID"
// @Success		200	{object}	map[string]interface{}	"Notification marked as read"
// @Failure		400	{object}	map[string]interface{}	"Invalid notification ID"
// @Failure		401	{object}	map[string]interface{}	"Authentication required"
// @Failure		404	{object}	map[string]interface{}	"Notification not found"
// @Router		/notifications/{id}/read [PATCH]
func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id, userID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllAsRead marks every unread notification of the caller.
// @Summary		Mark all notifications as read
// @Description	Marks every unread notification of the caller as read and returns how many changed.
// @Tags		Notifications
// @Security	BearerAuth
// @Success		200	{object}	MarkedResponse	"Number of notifications updated"
// @Failure		401	{object}	map[string]interface{}	"Authentication required"
// @Failure		500	{object}	map[string]interface{}	"Failed to update notifications"
// @Router		/notifications/read-all [POST]
func (h *Handler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	n, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, MarkedResponse{Updated: n})
}

// writeError maps domain errors onto the JSON error envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotificationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
	case errors.Is(err, booking.ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrUnknownKind),
		errors.Is(err, ErrInvalidSeverity),
		errors.Is(err, ErrInvalidLink),
		errors.Is(err, ErrInvalidRecipient):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNoRecipients):
		response.Error(c, http.StatusUnprocessableEntity, "NO_RECIPIENTS", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process notification")
	}
}
