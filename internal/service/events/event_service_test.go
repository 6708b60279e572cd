package events

import (
	"context"
	"errors"
	"testing"

	"github.com/avoronov/eventbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetEvents(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockCache) SetEvents(ctx context.Context, events []domain.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func TestList_CacheHit(t *testing.T) {
	mockRepo := &MockEventRepository{}
	mockCache := &MockCache{}
	service := NewEventService(mockRepo, mockCache)

	ctx := context.Background()
	cached := []domain.Event{{ID: "someEventId", Title: "Physics workshop"}}
	mockCache.On("GetEvents", ctx).Return(cached, nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, list)
	mockRepo.AssertNotCalled(t, "List")
	mockCache.AssertExpectations(t)
}

func TestList_CacheMiss_PopulatesCache(t *testing.T) {
	mockRepo := &MockEventRepository{}
	mockCache := &MockCache{}
	service := NewEventService(mockRepo, mockCache)

	ctx := context.Background()
	fromDB := []domain.Event{{ID: "someEventId", Title: "Physics workshop"}}
	mockCache.On("GetEvents", ctx).Return(nil, nil).Once()
	mockRepo.On("List", ctx).Return(fromDB, nil).Once()
	mockCache.On("SetEvents", ctx, fromDB).Return(nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, list)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestList_CacheErrorFallsThrough(t *testing.T) {
	mockRepo := &MockEventRepository{}
	mockCache := &MockCache{}
	service := NewEventService(mockRepo, mockCache)

	ctx := context.Background()
	fromDB := []domain.Event{{ID: "someEventId"}}
	mockCache.On("GetEvents", ctx).Return(nil, errors.New("redis unreachable")).Once()
	mockRepo.On("List", ctx).Return(fromDB, nil).Once()
	mockCache.On("SetEvents", ctx, fromDB).Return(errors.New("redis unreachable")).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, list)
}

func TestList_NoCache(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo, nil)

	ctx := context.Background()
	fromDB := []domain.Event{{ID: "someEventId"}}
	mockRepo.On("List", ctx).Return(fromDB, nil).Once()

	list, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, list)
}

func TestGetByID(t *testing.T) {
	mockRepo := &MockEventRepository{}
	service := NewEventService(mockRepo, nil)

	ctx := context.Background()
	event := &domain.Event{ID: "someEventId", Title: "Physics workshop"}
	mockRepo.On("GetByID", ctx, "someEventId").Return(event, nil).Once()

	got, err := service.GetByID(ctx, "someEventId")

	assert.NoError(t, err)
	assert.Equal(t, event, got)
}
