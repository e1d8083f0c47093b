package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"charity-events/internal/database/dbtest"
	"charity-events/internal/events/db"
	"charity-events/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	bunDB := dbtest.New(t)
	return &db.DB{Bun: bunDB}, bunDB
}

func seedCategory(t *testing.T, bunDB *bun.DB, name string) int64 {
	t.Helper()
	c := &models.Category{Name: name, CreatedAt: time.Now().UTC()}
	_, err := bunDB.NewInsert().Model(c).Returning("id").Exec(context.Background())
	require.NoError(t, err)
	return c.ID
}

func newEvent(name string, categoryID int64, at time.Time) *models.Event {
	now := time.Now().UTC()
	return &models.Event{
		Name:        name,
		Description: name + " description",
		EventDate:   at,
		Location:    "City Hall",
		CategoryID:  categoryID,
		Status:      models.StatusUpcoming,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	ctx := context.Background()
	eventDB, bunDB := setupTestDB(t)
	catID := seedCategory(t, bunDB, "Gala")

	at := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	e := newEvent("Spring Gala", catID, at)
	e.TicketPrice = 50
	e.MaxTickets = 100
	e.GoalAmount = 10000
	require.NoError(t, eventDB.CreateEvent(ctx, e))
	require.NotZero(t, e.ID)

	got, err := eventDB.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Gala", got.Name)
	assert.Equal(t, "Gala", got.CategoryName)
	assert.True(t, at.Equal(got.EventDate))
	assert.Equal(t, 100, got.MaxTickets)

	_, err = eventDB.GetEventByID(ctx, 9999)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCreateEventUnknownCategory(t *testing.T) {
	eventDB, _ := setupTestDB(t)
	err := eventDB.CreateEvent(context.Background(), newEvent("Orphan", 42, time.Now().UTC()))
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestListEventsOrderedByDate(t *testing.T) {
	ctx := context.Background()
	eventDB, bunDB := setupTestDB(t)
	catID := seedCategory(t, bunDB, "Community")

	base := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	late := newEvent("Late", catID, base.AddDate(0, 1, 0))
	early := newEvent("Early", catID, base)
	past := newEvent("Past", catID, base.AddDate(-1, 0, 0))
	past.Status = models.StatusPast
	for _, e := range []*models.Event{late, early, past} {
		require.NoError(t, eventDB.CreateEvent(ctx, e))
	}

	all, err := eventDB.ListEvents(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Past", "Early", "Late"}, []string{all[0].Name, all[1].Name, all[2].Name})

	upcoming, err := eventDB.ListEvents(ctx, models.StatusUpcoming)
	require.NoError(t, err)
	assert.Len(t, upcoming, 2)
}

func TestSearchEvents(t *testing.T) {
	ctx := context.Background()
	eventDB, bunDB := setupTestDB(t)
	gala := seedCategory(t, bunDB, "Gala")
	sports := seedCategory(t, bunDB, "Sports")

	spring := newEvent("Spring Gala", gala, time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC))
	spring.Location = "Grand Hotel"
	run := newEvent("Charity Run", sports, time.Date(2025, 5, 1, 7, 30, 0, 0, time.UTC))
	run.Description = "5k for the 100% club"
	run.Location = "Riverside Park"
	autumn := newEvent("Autumn Gala", gala, time.Date(2025, 10, 3, 19, 0, 0, 0, time.UTC))
	autumn.Status = models.StatusSuspended
	for _, e := range []*models.Event{spring, run, autumn} {
		require.NoError(t, eventDB.CreateEvent(ctx, e))
	}

	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		filter models.EventFilter
		want   []string
	}{
		{"no filter", models.EventFilter{}, []string{"Charity Run", "Spring Gala", "Autumn Gala"}},
		{"name case-insensitive", models.EventFilter{Name: "gala"}, []string{"Spring Gala", "Autumn Gala"}},
		{"name matches description", models.EventFilter{Name: "5K"}, []string{"Charity Run"}},
		{"percent is literal", models.EventFilter{Name: "100%"}, []string{"Charity Run"}},
		{"underscore is literal", models.EventFilter{Name: "_"}, nil},
		{"day", models.EventFilter{Day: &day}, []string{"Charity Run", "Spring Gala"}},
		{"location", models.EventFilter{Location: "HOTEL"}, []string{"Spring Gala"}},
		{"category name", models.EventFilter{Category: "sports"}, []string{"Charity Run"}},
		{"status", models.EventFilter{Status: models.StatusSuspended}, []string{"Autumn Gala"}},
		{"combined", models.EventFilter{Name: "gala", Day: &day}, []string{"Spring Gala"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eventDB.SearchEvents(ctx, tt.filter)
			require.NoError(t, err)
			var names []string
			for _, e := range got {
				names = append(names, e.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	byID, err := eventDB.SearchEvents(ctx, models.EventFilter{Category: "2"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, sports, byID[0].CategoryID)
}

func TestUpdateEventKeepsTicketsSold(t *testing.T) {
	ctx := context.Background()
	eventDB, bunDB := setupTestDB(t)
	catID := seedCategory(t, bunDB, "Gala")

	e := newEvent("Gala", catID, time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC))
	e.CurrentAmount = 250
	require.NoError(t, eventDB.CreateEvent(ctx, e))

	_, err := bunDB.NewUpdate().Model((*models.Event)(nil)).
		Set("tickets_sold = ?", 7).
		Where("id = ?", e.ID).
		Exec(ctx)
	require.NoError(t, err)

	e.Name = "Gala Renamed"
	e.TicketsSold = 0
	e.CurrentAmount = 0
	require.NoError(t, eventDB.UpdateEvent(ctx, e, false, false))

	got, err := eventDB.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gala Renamed", got.Name)
	assert.Equal(t, 7, got.TicketsSold)
	assert.Equal(t, 250.0, got.CurrentAmount)

	missing := newEvent("Ghost", catID, time.Now().UTC())
	missing.ID = 999
	assert.True(t, errors.Is(eventDB.UpdateEvent(ctx, missing, true, true), models.ErrNotFound))
}

func TestUpdateEventWithoutStatusKeepsStored(t *testing.T) {
	ctx := context.Background()
	eventDB, bunDB := setupTestDB(t)
	catID := seedCategory(t, bunDB, "Gala")

	e := newEvent("Gala", catID, time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC))
	e.Status = models.StatusSuspended
	require.NoError(t, eventDB.CreateEvent(ctx, e))

	e.Location = "Town Square"
	e.Status = models.StatusUpcoming
	require.NoError(t, eventDB.UpdateEvent(ctx, e, false, false))

	got, err := eventDB.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Town Square", got.Location)
	assert.Equal(t, models.StatusSuspended, got.Status)

	e.Status = models.StatusPast
	require.NoError(t, eventDB.UpdateEvent(ctx, e, false, true))
	got, err = eventDB.GetEventByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPast, got.Status)
}

func TestDeleteEvent(t *testing.T) {
	ctx := context.Background()
	eventDB, bunDB := setupTestDB(t)
	catID := seedCategory(t, bunDB, "Gala")

	e := newEvent("Gala", catID, time.Now().UTC().Truncate(time.Minute))
	require.NoError(t, eventDB.CreateEvent(ctx, e))

	reg := &models.Registration{EventID: e.ID, Name: "Ann", Email: "ann@example.com", Tickets: 1, RegisteredAt: time.Now().UTC()}
	_, err := bunDB.NewInsert().Model(reg).Returning("id").Exec(ctx)
	require.NoError(t, err)

	regs, err := eventDB.ListRegistrations(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, regs, 1)

	assert.True(t, errors.Is(eventDB.DeleteEvent(ctx, e.ID), models.ErrConflict))

	_, err = bunDB.NewDelete().Model((*models.Registration)(nil)).Where("id = ?", reg.ID).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, eventDB.DeleteEvent(ctx, e.ID))
	assert.True(t, errors.Is(eventDB.DeleteEvent(ctx, e.ID), models.ErrNotFound))
}
