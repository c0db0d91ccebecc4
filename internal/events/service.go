package events

import (
	"context"
	"errors"
	"math"
	"strings"

	"eventhive/internal/shared/constants"
	"eventhive/pkg/cache"
	"eventhive/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotOrganizer  = errors.New("only the organizer or an admin can modify this event")
	ErrNoChanges     = errors.New("no fields to update")
)

type Service interface {
	SetCacheService(cacheService cache.Service)

	CreateEvent(ctx context.Context, organizerEmail string, req CreateEventRequest) (*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error)
	GetEventsByOrganizer(ctx context.Context, email string) ([]Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, callerEmail string, isAdmin bool, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, callerEmail string, isAdmin bool) error

	// InvalidateEvent drops cached views of an event after its seat counter moved.
	InvalidateEvent(ctx context.Context, id uuid.UUID)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo: repo,
		log:  log,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateEvent(ctx context.Context, organizerEmail string, req CreateEventRequest) (*Event, error) {
	event := &Event{
		Title:          strings.TrimSpace(req.Title),
		Image:          req.Image,
		Category:       req.Category,
		Description:    req.Description,
		Location:       req.Location,
		Date:           req.Date.UTC(),
		Price:          req.Price,
		OrganizerName:  req.OrganizerName,
		OrganizerEmail: organizerEmail,
		OrganizerPhoto: req.OrganizerPhoto,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateLists(ctx, organizerEmail)
	s.log.LogEventCreated(ctx, event.ID.String(), organizerEmail, event.TotalSeats)
	return event, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	if s.cacheService == nil {
		return s.repo.GetByID(ctx, id)
	}

	var event Event
	err := s.cacheService.GetOrSet(ctx, constants.BuildEventDetailKey(id.String()), constants.TTL_EVENT_DETAIL,
		func() (interface{}, error) { return s.repo.GetByID(ctx, id) }, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) (*PaginatedEvents, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	fetch := func() (interface{}, error) {
		events, total, err := s.repo.GetAll(ctx, query)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = []Event{}
		}
		return &PaginatedEvents{
			Events:     events,
			TotalCount: total,
			Page:       query.Page,
			Limit:      query.Limit,
			TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
		}, nil
	}

	if s.cacheService == nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.(*PaginatedEvents), nil
	}

	var page PaginatedEvents
	key := constants.BuildEventListKey(query.Page, query.Limit, strings.ToLower(query.Category), strings.ToLower(query.Search))
	if err := s.cacheService.GetOrSet(ctx, key, constants.TTL_EVENT_LIST, fetch, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *service) GetEventsByOrganizer(ctx context.Context, email string) ([]Event, error) {
	fetch := func() (interface{}, error) {
		events, err := s.repo.GetByOrganizer(ctx, email)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = []Event{}
		}
		return events, nil
	}

	if s.cacheService == nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		return v.([]Event), nil
	}

	var events []Event
	if err := s.cacheService.GetOrSet(ctx, constants.BuildOrganizerEventsKey(email), constants.TTL_EVENT_ORGANIZER, fetch, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, callerEmail string, isAdmin bool, req UpdateEventRequest) (*Event, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && existing.OrganizerEmail != callerEmail {
		return nil, ErrNotOrganizer
	}

	updates := req.toUpdates()
	if len(updates) == 0 {
		return nil, ErrNoChanges
	}

	event, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.InvalidateEvent(ctx, id)
	s.invalidateLists(ctx, existing.OrganizerEmail)
	return event, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID, callerEmail string, isAdmin bool) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !isAdmin && existing.OrganizerEmail != callerEmail {
		return ErrNotOrganizer
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.InvalidateEvent(ctx, id)
	s.invalidateLists(ctx, existing.OrganizerEmail)
	s.log.InfoContext(ctx, "Event deleted", "event_id", id.String(), "by", callerEmail)
	return nil
}

func (s *service) InvalidateEvent(ctx context.Context, id uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildEventDetailKey(id.String())); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate event cache", "event_id", id.String(), "error", err)
	}
	// list pages embed availableSeats too
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_LISTS); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate event lists", "error", err)
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_ORGANIZER); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate organizer lists", "error", err)
	}
}

func (s *service) invalidateLists(ctx context.Context, organizerEmail string) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_LISTS); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate event lists", "error", err)
	}
	if err := s.cacheService.Delete(ctx, constants.BuildOrganizerEventsKey(organizerEmail)); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate organizer events", "error", err)
	}
}
