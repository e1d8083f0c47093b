package stats_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"charity-events/internal/cache"
	"charity-events/internal/database/dbtest"
	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/stats"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func seed(t *testing.T, bunDB *bun.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	gala := &models.Category{Name: "Gala", CreatedAt: now}
	empty := &models.Category{Name: "Arts", CreatedAt: now}
	for _, c := range []*models.Category{gala, empty} {
		_, err := bunDB.NewInsert().Model(c).Returning("id").Exec(ctx)
		require.NoError(t, err)
	}

	evts := []*models.Event{
		{Name: "A", Status: models.StatusUpcoming, TicketsSold: 4, CurrentAmount: 200, GoalAmount: 1000},
		{Name: "B", Status: models.StatusPast, TicketsSold: 10, CurrentAmount: 500.5, GoalAmount: 500},
		{Name: "C", Status: models.StatusSuspended},
	}
	for _, e := range evts {
		e.EventDate, e.Location, e.CategoryID, e.CreatedAt, e.UpdatedAt = now, "Hall", gala.ID, now, now
		_, err := bunDB.NewInsert().Model(e).Returning("id").Exec(ctx)
		require.NoError(t, err)
	}

	regs := []*models.Registration{
		{EventID: evts[0].ID, Name: "Ann", Email: "ann@example.com", Tickets: 3, RegisteredAt: now},
		{EventID: evts[0].ID, Name: "Bob", Email: "bob@example.com", Tickets: 1, RegisteredAt: now},
	}
	for _, r := range regs {
		_, err := bunDB.NewInsert().Model(r).Exec(ctx)
		require.NoError(t, err)
	}
}

func TestEventOverviewFromDatabase(t *testing.T) {
	bunDB := dbtest.New(t)
	seed(t, bunDB)
	svc := stats.NewService(&stats.DB{Bun: bunDB}, nil, nil)

	o, err := svc.EventOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.EventTotals{
		TotalEvents: 3, UpcomingEvents: 1, PastEvents: 1, SuspendedEvents: 1,
		TotalTicketsSold: 14, TotalRaised: 700.5, TotalGoal: 1500,
	}, o.Events)
	assert.Equal(t, models.RegistrationTotals{TotalRegistrations: 2, TotalTickets: 4}, o.Registrations)
}

func TestCategoryOverview(t *testing.T) {
	bunDB := dbtest.New(t)
	seed(t, bunDB)
	svc := stats.NewService(&stats.DB{Bun: bunDB}, nil, nil)

	rows, err := svc.CategoryOverview(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Arts", rows[0].Name)
	assert.Equal(t, 0, rows[0].EventCount)
	assert.Equal(t, "Gala", rows[1].Name)
	assert.Equal(t, 3, rows[1].EventCount)
	assert.Equal(t, 14, rows[1].TicketsSold)
	assert.Equal(t, 700.5, rows[1].TotalRaised)
}

func TestEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	bunDB := dbtest.New(t)
	svc := stats.NewService(&stats.DB{Bun: bunDB}, nil, nil)
	o, err := svc.EventOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, o.Events.TotalEvents)
	assert.Equal(t, 0.0, o.Events.TotalRaised)
	assert.Equal(t, 0.0, o.Events.TotalGoal)

	rows, err := svc.CategoryOverview(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	// A category without events sums nothing.
	_, err = bunDB.NewInsert().Model(&models.Category{Name: "Arts", CreatedAt: time.Now().UTC()}).Exec(ctx)
	require.NoError(t, err)
	rows, err = svc.CategoryOverview(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].EventCount)
	assert.Equal(t, 0.0, rows[0].TotalRaised)
}

type MockStatsDB struct {
	mock.Mock
}

func (m *MockStatsDB) EventTotals(ctx context.Context) (models.EventTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.EventTotals), args.Error(1)
}

func (m *MockStatsDB) RegistrationTotals(ctx context.Context) (models.RegistrationTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.RegistrationTotals), args.Error(1)
}

func (m *MockStatsDB) CategoryStats(ctx context.Context) ([]models.CategoryStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryStats), args.Error(1)
}

func TestOverviewIsCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	rc := cache.NewRedis(client, time.Minute, logger.NewWithWriter(io.Discard))

	mockDB := new(MockStatsDB)
	mockDB.On("EventTotals", ctx).Return(models.EventTotals{TotalEvents: 2}, nil)
	mockDB.On("RegistrationTotals", ctx).Return(models.RegistrationTotals{TotalRegistrations: 1}, nil)
	svc := stats.NewService(mockDB, rc, nil)

	for i := 0; i < 3; i++ {
		o, err := svc.EventOverview(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, o.Events.TotalEvents)
	}
	mockDB.AssertNumberOfCalls(t, "EventTotals", 1)

	rc.Publish(ctx, models.Change{Entity: models.EntityEvent, Action: models.ActionUpdated})
	_, err = svc.EventOverview(ctx)
	require.NoError(t, err)
	mockDB.AssertNumberOfCalls(t, "EventTotals", 2)
}

func TestWriteDuringRecomputeIsNotCached(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	rc := cache.NewRedis(client, time.Minute, logger.NewWithWriter(io.Discard))

	mockDB := new(MockStatsDB)
	// The first read races with a registration that invalidates the cache.
	mockDB.On("EventTotals", ctx).Return(models.EventTotals{TotalEvents: 1}, nil).Once().Run(func(mock.Arguments) {
		rc.Publish(ctx, models.Change{Entity: models.EntityRegistration, Action: models.ActionCreated})
	})
	mockDB.On("EventTotals", ctx).Return(models.EventTotals{TotalEvents: 2}, nil)
	mockDB.On("RegistrationTotals", ctx).Return(models.RegistrationTotals{}, nil)
	svc := stats.NewService(mockDB, rc, logger.NewWithWriter(io.Discard))

	o, err := svc.EventOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, o.Events.TotalEvents)
	assert.False(t, mr.Exists(cache.KeyEventStats))

	o, err = svc.EventOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Events.TotalEvents)
	assert.True(t, mr.Exists(cache.KeyEventStats))

	o, err = svc.EventOverview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, o.Events.TotalEvents)
	mockDB.AssertNumberOfCalls(t, "EventTotals", 2)
}

func TestCacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	mockDB := new(MockStatsDB)
	mockDB.On("CategoryStats", ctx).Return([]models.CategoryStats{{ID: 1, Name: "Gala"}}, nil)
	svc := stats.NewService(mockDB, cache.NewRedis(client, time.Minute, nil), logger.NewWithWriter(io.Discard))

	rows, err := svc.CategoryOverview(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	mockDB2 := new(MockStatsDB)
	mockDB2.On("CategoryStats", ctx).Return(nil, errors.New("db down"))
	_, err = stats.NewService(mockDB2, nil, nil).CategoryOverview(ctx)
	assert.Error(t, err)
}
