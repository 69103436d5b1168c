package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"petmemorial/internal/pkg/response"
	"petmemorial/internal/pkg/validator"
)

// EventsHandler lets other services trigger notifications. Mounted behind the internal token.
type EventsHandler struct {
	service *Service
}

func NewEventsHandler(service *Service) *EventsHandler {
	return &EventsHandler{service: service}
}

func (h *EventsHandler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.FieldErrors(err))
		return
	}

	in := Request{
		NewNotification: NewNotification{
			UserID:  req.UserID,
			Title:   req.Title,
			Message: req.Message,
			Type:    Severity(req.Type),
			Link:    req.Link,
		},
		Email: policyFromFlag(req.SendEmail),
	}

	var (
		id  int64
		err error
	)
	if req.Audience == AccountBusiness {
		id, err = h.service.CreateBusinessNotification(c.Request.Context(), in)
	} else {
		id, err = h.service.CreateNotification(c.Request.Context(), in)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CreatedResponse{NotificationID: id})
}

func (h *EventsHandler) BookingEvent(c *gin.Context) {
	var req BookingEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.FieldErrors(err))
		return
	}

	id, err := h.service.CreateBookingNotification(c.Request.Context(), req.BookingID, BookingKind(req.Kind), BookingEventOptions{
		Reason:      req.Reason,
		CancelledBy: req.CancelledBy,
		Source:      req.Source,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CreatedResponse{NotificationID: id})
}

func (h *EventsHandler) PaymentEvent(c *gin.Context) {
	var req PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.FieldErrors(err))
		return
	}

	id, err := h.service.CreatePaymentNotification(c.Request.Context(), req.BookingID, PaymentKind(req.Kind), PaymentOptions{Amount: req.Amount})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CreatedResponse{NotificationID: id})
}

func (h *EventsHandler) SystemEvent(c *gin.Context) {
	var req SystemEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.FieldErrors(err))
		return
	}

	res, err := h.service.CreateSystemNotification(c.Request.Context(), SystemKind(req.Kind), SystemNotice{
		Title:   req.Title,
		Message: req.Message,
		Link:    req.Link,
		UserIDs: req.UserIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *EventsHandler) AdminEvent(c *gin.Context) {
	var req AdminEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", validator.FieldErrors(err))
		return
	}

	id, err := h.service.CreateAdminNotification(c.Request.Context(), AdminRequest{
		NewAdminNotification: NewAdminNotification{
			Type:          req.Type,
			Title:         req.Title,
			Message:       req.Message,
			EntityType:    req.EntityType,
			EntityID:      req.EntityID,
			SubjectUserID: req.UserID,
		},
		Email: policyFromFlag(req.SendEmail),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CreatedResponse{NotificationID: id})
}
