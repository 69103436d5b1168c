package notification

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petmemorial/internal/pkg/response"
)

type AdminHandler struct {
	service *Service
}

func NewAdminHandler(service *Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// List returns admin notifications, newest first. ?unread=true limits to unread ones.
func (h *AdminHandler) List(c *gin.Context) {
	limit := DefaultListLimit
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = min(v, maxListLimit)
		}
	}
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))

	list, err := h.service.ListAdmin(c.Request.Context(), limit, unreadOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": list})
}

func (h *AdminHandler) MarkAsRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}
	if err := h.service.MarkAdminAsRead(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *AdminHandler) MarkAllAsRead(c *gin.Context) {
	n, err := h.service.MarkAllAdminAsRead(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, MarkedResponse{Updated: n})
}
