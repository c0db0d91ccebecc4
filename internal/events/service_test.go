package events

import (
	"context"
	"testing"
	"time"

	"eventhive/pkg/cache"
	"eventhive/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, event *Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	args := m.Called(ctx, id)
	if e := args.Get(0); e != nil {
		return e.(*Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetAll(ctx context.Context, query EventListQuery) ([]Event, int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]Event), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepository) GetByOrganizer(ctx context.Context, email string) ([]Event, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]Event), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Event, error) {
	args := m.Called(ctx, id, updates)
	if e := args.Get(0); e != nil {
		return e.(*Event), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreateEvent_InitializesSeatCounter(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{}
	repo.On("Create", ctx, mock.MatchedBy(func(e *Event) bool {
		return e.TotalSeats == 50 && e.AvailableSeats == 50 && e.OrganizerEmail == "org@example.com"
	})).Return(nil)

	svc := NewService(repo, logger.NewNop())
	event, err := svc.CreateEvent(ctx, "org@example.com", CreateEventRequest{
		Title:      "Jazz Night",
		Category:   "music",
		Location:   "Hall A",
		Date:       time.Now().Add(72 * time.Hour),
		Price:      25,
		TotalSeats: 50,
	})

	require.NoError(t, err)
	assert.Equal(t, 50, event.AvailableSeats)
	repo.AssertExpectations(t)
}

func TestUpdateEvent_Ownership(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	title := "Renamed"
	existing := &Event{ID: id, OrganizerEmail: "org@example.com", TotalSeats: 10, AvailableSeats: 4}

	t.Run("stranger is rejected", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetByID", ctx, id).Return(existing, nil)

		_, err := NewService(repo, logger.NewNop()).UpdateEvent(ctx, id, "eve@example.com", false, UpdateEventRequest{Title: &title})

		assert.ErrorIs(t, err, ErrNotOrganizer)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin may edit without touching seats", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetByID", ctx, id).Return(existing, nil)
		repo.On("Update", ctx, id, map[string]interface{}{"title": "Renamed"}).
			Return(&Event{ID: id, Title: "Renamed", TotalSeats: 10, AvailableSeats: 4}, nil)

		event, err := NewService(repo, logger.NewNop()).UpdateEvent(ctx, id, "admin@example.com", true, UpdateEventRequest{Title: &title})

		require.NoError(t, err)
		assert.Equal(t, 4, event.AvailableSeats)
		repo.AssertExpectations(t)
	})

	t.Run("empty update", func(t *testing.T) {
		repo := &mockRepository{}
		repo.On("GetByID", ctx, id).Return(existing, nil)

		_, err := NewService(repo, logger.NewNop()).UpdateEvent(ctx, id, "org@example.com", false, UpdateEventRequest{})
		assert.ErrorIs(t, err, ErrNoChanges)
	})
}

func TestDeleteEvent_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := &mockRepository{}
	repo.On("GetByID", ctx, id).Return(nil, ErrEventNotFound)

	err := NewService(repo, logger.NewNop()).DeleteEvent(ctx, id, "org@example.com", false)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetAllEvents_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{}
	repo.On("GetAll", ctx, EventListQuery{Page: 1, Limit: 20}).Return([]Event{{Title: "A"}, {Title: "B"}}, int64(41), nil)

	page, err := NewService(repo, logger.NewNop()).GetAllEvents(ctx, EventListQuery{})

	require.NoError(t, err)
	assert.Len(t, page.Events, 2)
	assert.Equal(t, 3, page.TotalPages)
}

func TestGetEventByID_CachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	id := uuid.New()
	repo := &mockRepository{}
	repo.On("GetByID", ctx, id).Return(&Event{ID: id, AvailableSeats: 5}, nil).Once()
	repo.On("GetByID", ctx, id).Return(&Event{ID: id, AvailableSeats: 4}, nil).Once()

	svc := NewService(repo, logger.NewNop())
	svc.SetCacheService(cache.NewService(client))

	first, err := svc.GetEventByID(ctx, id)
	require.NoError(t, err)
	cached, err := svc.GetEventByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, first.AvailableSeats)
	assert.Equal(t, 5, cached.AvailableSeats)

	svc.InvalidateEvent(ctx, id)

	fresh, err := svc.GetEventByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.AvailableSeats)
	repo.AssertExpectations(t)
}
