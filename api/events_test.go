package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/avoronov/eventbooking/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupEventRouter(service *MockEventUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewEventHandler(service)
	handler.Register(router.Group("/events"))
	return router
}

func TestListEvents_OK(t *testing.T) {
	mockEvents := &MockEventUseCase{}
	router := setupEventRouter(mockEvents)

	list := []domain.Event{
		{ID: "firstEventId", Title: "Physics workshop", NumberOfPlaces: 30},
		{ID: "secondEventId", Title: "Chemistry day", NumberOfPlaces: 10},
	}
	mockEvents.On("List", mock.Anything).Return(list, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []domain.Event
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "firstEventId", resp[0].ID)

	mockEvents.AssertExpectations(t)
}

func TestGetEvent_NotFound(t *testing.T) {
	mockEvents := &MockEventUseCase{}
	router := setupEventRouter(mockEvents)

	mockEvents.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrEventNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/events/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
