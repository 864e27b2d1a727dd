package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

type CreateEventInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Date        time.Time  `json:"date"`
	EndDate     *time.Time `json:"endDate"`
	Location    string     `json:"location"`
	City        string     `json:"city"`
	Type        string     `json:"type"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	SourceID    string     `json:"sourceId"`
	ImageURL    string     `json:"imageUrl"`
}

type EventService interface {
	Create(ctx context.Context, in CreateEventInput) (*types.Event, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Event, error)
	List(ctx context.Context, filter repos.EventFilter) ([]*types.Event, error)
}

type eventService struct {
	log    *logger.Logger
	events repos.EventRepo
}

func NewEventService(baseLog *logger.Logger, events repos.EventRepo) EventService {
	return &eventService{
		log:    baseLog.With("service", "EventService"),
		events: events,
	}
}

func (s *eventService) Create(ctx context.Context, in CreateEventInput) (*types.Event, error) {
	const op = "EventService.Create"

	if strings.TrimSpace(in.Name) == "" {
		return nil, aggregates.NewError(aggregates.CodeValidation, op, "name is required", nil)
	}
	if in.Date.IsZero() {
		return nil, aggregates.NewError(aggregates.CodeValidation, op, "date is required", nil)
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = "manual"
	}

	// imported calendars replay their feeds; dedupe on (source, sourceId)
	if in.SourceID != "" {
		existing, err := s.events.GetBySource(dbctx.Context{Ctx: ctx}, source, in.SourceID)
		if err != nil {
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	eventType := strings.TrimSpace(in.Type)
	if eventType == "" {
		eventType = "trade_show"
	}
	event := &types.Event{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Date:        in.Date,
		EndDate:     in.EndDate,
		Location:    in.Location,
		City:        in.City,
		Type:        eventType,
		URL:         in.URL,
		Source:      source,
		SourceID:    in.SourceID,
		ImageURL:    in.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}
	created, err := s.events.Create(dbctx.Context{Ctx: ctx}, event)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return created, nil
}

func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*types.Event, error) {
	const op = "EventService.Get"

	event, err := s.events.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if event == nil {
		return nil, aggregates.NewError(aggregates.CodeNotFound, op, "event not found", nil)
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter repos.EventFilter) ([]*types.Event, error) {
	const op = "EventService.List"

	events, err := s.events.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return events, nil
}
