package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/avoronov/eventbooking/internal/repository"
	"github.com/avoronov/eventbooking/internal/service/booking"
	"github.com/avoronov/eventbooking/internal/service/events"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	events  events.EventUseCase
	users   repository.UserRepository
}

type createBookingRequest struct {
	UserID                int64             `json:"user_id"`
	ActingUserID          int64             `json:"acting_user_id"`
	AdditionalInformation map[string]string `json:"additional_information"`
	AsWaitingList         bool              `json:"as_waiting_list"`
}

type attendanceRequest struct {
	Attended bool `json:"attended"`
}

type bookingResponse struct {
	EventID      string `json:"event_id"`
	UserID       int64  `json:"user_id"`
	ReservedByID int64  `json:"reserved_by_id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase, events events.EventUseCase, users repository.UserRepository) *BookingHandler {
	return &BookingHandler{service: service, events: events, users: users}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/bookings", h.create)
	router.DELETE("/:id/bookings/:userId", h.cancel)
	router.POST("/:id/bookings/:userId/attendance", h.attendance)
	router.GET("/:id/bookings/availability", h.availability)
	router.GET("/:id/bookings/counts", h.counts)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.RequestBooking(c.Request.Context(), *event, *user, booking.BookingRequest{
		ActingUserID:          req.ActingUserID,
		AdditionalInformation: req.AdditionalInformation,
		AsWaitingList:         req.AsWaitingList,
	})
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), *event, userID); err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) attendance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.RecordAttendance(c.Request.Context(), *event, userID, req.Attended)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(updated))
}

func (h *BookingHandler) availability(c *gin.Context) {
	event, err := h.events.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	available, err := h.service.GetPlacesAvailable(c.Request.Context(), *event)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_id": event.ID, "places_available": available})
}

func (h *BookingHandler) counts(c *gin.Context) {
	includeDeleted := c.Query("include_deleted_users") == "true"

	counts, err := h.service.GetBookingStatusCounts(c.Request.Context(), c.Param("id"), includeDeleted)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}

func toBookingResponse(b *domain.EventBooking) bookingResponse {
	return bookingResponse{
		EventID:      b.EventID,
		UserID:       b.UserID,
		ReservedByID: b.ReservedByID,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, booking.ErrEventFull):
		return http.StatusConflict
	case errors.Is(err, booking.ErrDeadlinePassed):
		return http.StatusConflict
	case errors.Is(err, booking.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, booking.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrBookingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
