package api

import (
	"net/http"
	"strconv"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/avoronov/eventbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

// UserBookingsHandler serves the per-user views of bookings: what the user
// holds, what they reserved for others, and retention clearing of their
// stored booking answers.
type UserBookingsHandler struct {
	service booking.BookingUseCase
}

func NewUserBookingsHandler(service booking.BookingUseCase) *UserBookingsHandler {
	return &UserBookingsHandler{service: service}
}

func (h *UserBookingsHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/bookings", h.bookings)
	router.GET("/:id/reservations", h.reservations)
	router.DELETE("/:id/additional-information", h.eraseAdditionalInformation)
}

func (h *UserBookingsHandler) bookings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	list, err := h.service.ListBookingsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(list))
}

func (h *UserBookingsHandler) reservations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	list, err := h.service.ListReservationsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(list))
}

func (h *UserBookingsHandler) eraseAdditionalInformation(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.service.EraseAdditionalInformation(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func toBookingResponses(list []domain.EventBooking) []bookingResponse {
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	return out
}
