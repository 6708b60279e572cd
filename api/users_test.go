package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupUserRouter(service *MockBookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewUserBookingsHandler(service)
	handler.Register(router.Group("/users"))
	return router
}

func TestUserBookings_OK(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := setupUserRouter(mockService)

	list := []domain.EventBooking{
		{EventID: "firstEventId", UserID: 6, Status: domain.BookingStatusConfirmed},
		{EventID: "secondEventId", UserID: 6, Status: domain.BookingStatusCancelled},
	}
	mockService.On("ListBookingsForUser", mock.Anything, int64(6)).Return(list, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/6/bookings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "firstEventId", resp[0].EventID)
	mockService.AssertExpectations(t)
}

func TestUserReservations_OK(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := setupUserRouter(mockService)

	list := []domain.EventBooking{
		{EventID: "someEventId", UserID: 7, ReservedByID: 99, Status: domain.BookingStatusConfirmed},
	}
	mockService.On("ListReservationsForUser", mock.Anything, int64(99)).Return(list, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/99/reservations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, int64(99), resp[0].ReservedByID)
}

func TestEraseAdditionalInformation_NoContent(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := setupUserRouter(mockService)

	mockService.On("EraseAdditionalInformation", mock.Anything, int64(6)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/users/6/additional-information", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

func TestUserBookings_InvalidID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := setupUserRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/users/notANumber/bookings", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListBookingsForUser")
}
