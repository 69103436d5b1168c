package reminder

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petmemorial/internal/domain/booking"
	"petmemorial/internal/pkg/response"
)

type Handler struct {
	scheduler *Scheduler
	repo      *Repository
}

func NewHandler(scheduler *Scheduler, repo *Repository) *Handler {
	return &Handler{scheduler: scheduler, repo: repo}
}

type ScheduleResponse struct {
	BookingID int64      `json:"booking_id"`
	Scheduled []Reminder `json:"scheduled"`
	Reminders []Reminder `json:"reminders"`
}

// Schedule godoc
// @Summary Schedule the 24h and 1h reminders of a booking
// @Tags Reminders
// @Param id path int true "Booking ID"
// @Success 201 {object} ScheduleResponse
// @Router /internal/v1/bookings/{id}/reminders [post]
func (h *Handler) Schedule(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return
	}

	scheduled, err := h.scheduler.ScheduleBookingReminders(c.Request.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		case errors.Is(err, booking.ErrInvalidSchedule):
			response.Error(c, http.StatusUnprocessableEntity, "INVALID_SCHEDULE", err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to schedule reminders")
		}
		return
	}

	all, err := h.repo.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load reminders")
		return
	}
	if scheduled == nil {
		scheduled = []Reminder{}
	}
	if all == nil {
		all = []Reminder{}
	}

	response.Success(c, http.StatusCreated, ScheduleResponse{
		BookingID: bookingID,
		Scheduled: scheduled,
		Reminders: all,
	})
}
