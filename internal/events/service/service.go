package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/notify"
	"charity-events/internal/utils"
)

type EventDBLayer interface {
	ListEvents(ctx context.Context, status models.EventStatus) ([]models.Event, error)
	SearchEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event, withAmount, withStatus bool) error
	DeleteEvent(ctx context.Context, id int64) error
}

// SearchParams are the raw query values of the search endpoint.
type SearchParams struct {
	Name     string
	Date     string
	Location string
	Category string
	Status   string
}

type EventService struct {
	DB        EventDBLayer
	Publisher notify.Publisher
	Logger    *logger.Logger
}

func NewEventService(db EventDBLayer, publisher notify.Publisher, log *logger.Logger) *EventService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &EventService{DB: db, Publisher: publisher, Logger: log}
}

// List returns all events, or only those with the given status.
func (s *EventService) List(ctx context.Context, status string) ([]models.Event, error) {
	var st models.EventStatus
	if strings.TrimSpace(status) != "" {
		parsed, ok := models.ParseEventStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrValidation, status)
		}
		st = parsed
	}
	return s.DB.ListEvents(ctx, st)
}

func (s *EventService) Search(ctx context.Context, p SearchParams) ([]models.Event, error) {
	filter := models.EventFilter{
		Name:     strings.TrimSpace(p.Name),
		Location: strings.TrimSpace(p.Location),
		Category: strings.TrimSpace(p.Category),
	}
	if strings.TrimSpace(p.Date) != "" {
		day, err := utils.ParseDay(p.Date)
		if err != nil {
			return nil, err
		}
		filter.Day = &day
	}
	if strings.TrimSpace(p.Status) != "" {
		st, ok := models.ParseEventStatus(p.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrValidation, p.Status)
		}
		filter.Status = st
	}
	return s.DB.SearchEvents(ctx, filter)
}

// Get returns the event with its registrations, newest first.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	regs, err := s.DB.ListRegistrations(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Registrations = regs
	return event, nil
}

func (s *EventService) Create(ctx context.Context, in models.EventInput) (int64, error) {
	event, err := s.build(ctx, in)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if in.CurrentAmount != nil {
		event.CurrentAmount = *in.CurrentAmount
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return 0, err
	}
	s.log(models.ActionCreated, event.ID, event.Name)
	s.Publisher.Publish(ctx, notify.NewChange(models.EntityEvent, models.ActionCreated, event.ID))
	return event.ID, nil
}

// Update replaces the editable fields. current_amount is kept when the body
// omits it.
func (s *EventService) Update(ctx context.Context, id int64, in models.EventInput) error {
	event, err := s.build(ctx, in)
	if err != nil {
		return err
	}
	event.ID = id
	event.UpdatedAt = time.Now().UTC()
	if in.CurrentAmount != nil {
		event.CurrentAmount = *in.CurrentAmount
	}

	// An omitted status keeps the stored one.
	withStatus := strings.TrimSpace(in.Status) != ""
	if err := s.DB.UpdateEvent(ctx, event, in.CurrentAmount != nil, withStatus); err != nil {
		return err
	}
	s.log(models.ActionUpdated, id, event.Name)
	s.Publisher.Publish(ctx, notify.NewChange(models.EntityEvent, models.ActionUpdated, id))
	return nil
}

func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.DB.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.log(models.ActionDeleted, id, "")
	s.Publisher.Publish(ctx, notify.NewChange(models.EntityEvent, models.ActionDeleted, id))
	return nil
}

func (s *EventService) build(ctx context.Context, in models.EventInput) (*models.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)

	if err := utils.Validate(in); err != nil {
		return nil, err
	}

	raw := in.DateValue()
	if raw == "" {
		return nil, fmt.Errorf("%w: date is required", models.ErrValidation)
	}
	date, err := utils.ParseEventDate(raw)
	if err != nil {
		return nil, err
	}

	categoryID := in.CategoryValue()
	if categoryID <= 0 {
		return nil, fmt.Errorf("%w: category is required", models.ErrValidation)
	}
	exists, err := s.DB.CategoryExists(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: category %d does not exist", models.ErrValidation, categoryID)
	}

	status := models.StatusUpcoming
	if strings.TrimSpace(in.Status) != "" {
		parsed, ok := models.ParseEventStatus(in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", models.ErrValidation, in.Status)
		}
		status = parsed
	}

	return &models.Event{
		Name:        in.Name,
		Description: in.Description,
		EventDate:   date,
		Location:    in.Location,
		CategoryID:  categoryID,
		TicketPrice: in.TicketPrice,
		MaxTickets:  in.MaxTickets,
		GoalAmount:  in.GoalAmount,
		Status:      status,
	}, nil
}

func (s *EventService) log(action string, id int64, msg string) {
	if s.Logger != nil {
		s.Logger.LogEvent(action, id, msg)
	}
}
