package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	events "charity-events/internal/events/service"
	"charity-events/internal/models"
	"charity-events/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventDBLayer is a mock implementation of the EventDBLayer interface
type MockEventDBLayer struct {
	mock.Mock
}

func (m *MockEventDBLayer) ListEvents(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventDBLayer) SearchEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventDBLayer) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventDBLayer) ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Registration), args.Error(1)
}

func (m *MockEventDBLayer) CategoryExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventDBLayer) CreateEvent(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventDBLayer) UpdateEvent(ctx context.Context, event *models.Event, withAmount, withStatus bool) error {
	args := m.Called(ctx, event, withAmount, withStatus)
	return args.Error(0)
}

func (m *MockEventDBLayer) DeleteEvent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func validInput() models.EventInput {
	return models.EventInput{
		Name:        "  Spring Gala ",
		Date:        "2025-05-01T18:00",
		Location:    "Grand Hotel",
		Category:    int64Ptr(5),
		TicketPrice: 50,
		MaxTickets:  100,
		GoalAmount:  10000,
	}
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockEventDBLayer)
	rec := &notify.Recorder{}
	svc := events.NewEventService(mockDB, rec, nil)

	mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil)
	mockDB.On("CreateEvent", ctx, mock.MatchedBy(func(e *models.Event) bool {
		return e.Name == "Spring Gala" &&
			e.Status == models.StatusUpcoming &&
			e.EventDate.Equal(time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)) &&
			e.CategoryID == 5
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Event).ID = 12
	}).Return(nil)

	id, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	require.Len(t, rec.Changes, 1)
	assert.Equal(t, models.EntityEvent, rec.Changes[0].Entity)
	assert.Equal(t, models.ActionCreated, rec.Changes[0].Action)
	assert.Equal(t, int64(12), rec.Changes[0].EntityID)
	mockDB.AssertExpectations(t)
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(in *models.EventInput)
	}{
		{"missing name", func(in *models.EventInput) { in.Name = "   " }},
		{"missing location", func(in *models.EventInput) { in.Location = "" }},
		{"missing date", func(in *models.EventInput) { in.Date = "" }},
		{"bad date", func(in *models.EventInput) { in.Date = "next tuesday" }},
		{"missing category", func(in *models.EventInput) { in.Category = nil }},
		{"negative price", func(in *models.EventInput) { in.TicketPrice = -1 }},
		{"negative goal", func(in *models.EventInput) { in.GoalAmount = -10 }},
		{"negative current", func(in *models.EventInput) { in.CurrentAmount = float64Ptr(-5) }},
		{"unknown status", func(in *models.EventInput) { in.Status = "cancelled" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB := new(MockEventDBLayer)
			mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil).Maybe()
			svc := events.NewEventService(mockDB, nil, nil)

			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			assert.True(t, errors.Is(err, models.ErrValidation), "got %v", err)
			mockDB.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateEventUnknownCategory(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockEventDBLayer)
	mockDB.On("CategoryExists", ctx, int64(5)).Return(false, nil)
	svc := events.NewEventService(mockDB, nil, nil)

	_, err := svc.Create(ctx, validInput())
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestCreateEventAcceptsAliases(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockEventDBLayer)
	svc := events.NewEventService(mockDB, nil, nil)

	in := validInput()
	in.Date = ""
	in.EventDate = "2025-05-01 18:00:00"
	in.Category = nil
	in.CategoryID = int64Ptr(5)
	in.Status = "active"

	mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil)
	mockDB.On("CreateEvent", ctx, mock.MatchedBy(func(e *models.Event) bool {
		return e.Status == models.StatusUpcoming && e.CategoryID == 5 && e.EventDate.Hour() == 18
	})).Return(nil)

	_, err := svc.Create(ctx, in)
	require.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestUpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("without current amount", func(t *testing.T) {
		mockDB := new(MockEventDBLayer)
		svc := events.NewEventService(mockDB, nil, nil)
		mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil)
		mockDB.On("UpdateEvent", ctx, mock.MatchedBy(func(e *models.Event) bool { return e.ID == 12 }), false, false).Return(nil)

		require.NoError(t, svc.Update(ctx, 12, validInput()))
		mockDB.AssertExpectations(t)
	})

	t.Run("with current amount", func(t *testing.T) {
		mockDB := new(MockEventDBLayer)
		svc := events.NewEventService(mockDB, nil, nil)
		in := validInput()
		in.CurrentAmount = float64Ptr(750)
		mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil)
		mockDB.On("UpdateEvent", ctx, mock.MatchedBy(func(e *models.Event) bool { return e.CurrentAmount == 750 }), true, false).Return(nil)

		require.NoError(t, svc.Update(ctx, 12, in))
		mockDB.AssertExpectations(t)
	})

	t.Run("with status", func(t *testing.T) {
		mockDB := new(MockEventDBLayer)
		svc := events.NewEventService(mockDB, nil, nil)
		in := validInput()
		in.Status = "suspended"
		mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil)
		mockDB.On("UpdateEvent", ctx, mock.MatchedBy(func(e *models.Event) bool { return e.Status == models.StatusSuspended }), false, true).Return(nil)

		require.NoError(t, svc.Update(ctx, 12, in))
		mockDB.AssertExpectations(t)
	})

	t.Run("missing event", func(t *testing.T) {
		mockDB := new(MockEventDBLayer)
		rec := &notify.Recorder{}
		svc := events.NewEventService(mockDB, rec, nil)
		mockDB.On("CategoryExists", ctx, int64(5)).Return(true, nil)
		mockDB.On("UpdateEvent", ctx, mock.Anything, false, false).Return(models.ErrNotFound)

		err := svc.Update(ctx, 99, validInput())
		assert.True(t, errors.Is(err, models.ErrNotFound))
		assert.Empty(t, rec.Changes)
	})
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockEventDBLayer)
	rec := &notify.Recorder{}
	svc := events.NewEventService(mockDB, rec, nil)

	mockDB.On("DeleteEvent", ctx, int64(3)).Return(models.ErrConflict)
	mockDB.On("DeleteEvent", ctx, int64(4)).Return(nil)

	assert.True(t, errors.Is(svc.Delete(ctx, 3), models.ErrConflict))
	require.NoError(t, svc.Delete(ctx, 4))
	require.Len(t, rec.Changes, 1)
	assert.Equal(t, models.ActionDeleted, rec.Changes[0].Action)
}

func TestGetEventIncludesRegistrations(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockEventDBLayer)
	svc := events.NewEventService(mockDB, nil, nil)

	mockDB.On("GetEventByID", ctx, int64(12)).Return(&models.Event{ID: 12, Name: "Gala"}, nil)
	mockDB.On("ListRegistrations", ctx, int64(12)).Return([]models.Registration{{ID: 2}, {ID: 1}}, nil)

	event, err := svc.Get(ctx, 12)
	require.NoError(t, err)
	assert.Len(t, event.Registrations, 2)

	mockDB.On("GetEventByID", ctx, int64(13)).Return(nil, models.ErrNotFound)
	_, err = svc.Get(ctx, 13)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestSearchParsesParams(t *testing.T) {
	ctx := context.Background()
	mockDB := new(MockEventDBLayer)
	svc := events.NewEventService(mockDB, nil, nil)

	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mockDB.On("SearchEvents", ctx, models.EventFilter{
		Name:     "gala",
		Day:      &day,
		Category: "Gala",
		Status:   models.StatusPast,
	}).Return([]models.Event{}, nil)

	_, err := svc.Search(ctx, events.SearchParams{Name: " gala ", Date: "2025-05-01", Category: "Gala", Status: "ended"})
	require.NoError(t, err)
	mockDB.AssertExpectations(t)

	_, err = svc.Search(ctx, events.SearchParams{Date: "05/01/2025"})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.List(ctx, "bogus")
	assert.True(t, errors.Is(err, models.ErrValidation))
}
