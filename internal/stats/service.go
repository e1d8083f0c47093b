// Package stats computes the dashboard totals, cached when Redis is on.
package stats

import (
	"context"
	"errors"
	"fmt"

	"charity-events/internal/cache"
	"charity-events/internal/logger"
	"charity-events/internal/models"
)

type StatsDBLayer interface {
	EventTotals(ctx context.Context) (models.EventTotals, error)
	RegistrationTotals(ctx context.Context) (models.RegistrationTotals, error)
	CategoryStats(ctx context.Context) ([]models.CategoryStats, error)
}

// Cache is satisfied by *cache.Redis.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	Generation(ctx context.Context) (int64, error)
	SetJSONAt(ctx context.Context, key string, v interface{}, gen int64) error
}

type Service struct {
	DB     StatsDBLayer
	Cache  Cache
	Logger *logger.Logger
}

// NewService builds the stats service. A nil cache always hits the database.
func NewService(db StatsDBLayer, c Cache, log *logger.Logger) *Service {
	return &Service{DB: db, Cache: c, Logger: log}
}

func (s *Service) EventOverview(ctx context.Context) (*models.EventOverview, error) {
	var overview models.EventOverview
	if s.cached(ctx, cache.KeyEventStats, &overview) {
		return &overview, nil
	}
	gen, storable := s.generation(ctx)

	events, err := s.DB.EventTotals(ctx)
	if err != nil {
		return nil, err
	}
	regs, err := s.DB.RegistrationTotals(ctx)
	if err != nil {
		return nil, err
	}
	overview = models.EventOverview{Events: events, Registrations: regs}
	if storable {
		s.store(ctx, cache.KeyEventStats, overview, gen)
	}
	return &overview, nil
}

func (s *Service) CategoryOverview(ctx context.Context) ([]models.CategoryStats, error) {
	var rows []models.CategoryStats
	if s.cached(ctx, cache.KeyCategoryStats, &rows) && rows != nil {
		return rows, nil
	}
	gen, storable := s.generation(ctx)

	rows, err := s.DB.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}
	if storable {
		s.store(ctx, cache.KeyCategoryStats, rows, gen)
	}
	return rows, nil
}

func (s *Service) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.Cache == nil {
		return false
	}
	err := s.Cache.GetJSON(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) && s.Logger != nil {
		s.Logger.Warn("REDIS", fmt.Sprintf("Stats cache read failed, using database: %v", err))
	}
	return false
}

// generation must be read before the database queries. Without it nothing
// is stored.
func (s *Service) generation(ctx context.Context) (int64, bool) {
	if s.Cache == nil {
		return 0, false
	}
	gen, err := s.Cache.Generation(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("REDIS", fmt.Sprintf("Stats cache generation unavailable: %v", err))
		}
		return 0, false
	}
	return gen, true
}

func (s *Service) store(ctx context.Context, key string, v interface{}, gen int64) {
	err := s.Cache.SetJSONAt(ctx, key, v, gen)
	if err == nil || s.Logger == nil {
		return
	}
	if errors.Is(err, cache.ErrStale) {
		s.Logger.Debug("REDIS", fmt.Sprintf("Skipped stale %s after invalidation", key))
		return
	}
	s.Logger.Warn("REDIS", fmt.Sprintf("Stats cache write failed: %v", err))
}
