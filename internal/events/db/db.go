package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charity-events/internal/database"
	"charity-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) selectEvents(events *[]models.Event) *bun.SelectQuery {
	return d.Bun.NewSelect().
		Model(events).
		ColumnExpr("e.*").
		ColumnExpr("c.name AS category_name").
		Join("LEFT JOIN categories AS c ON c.id = e.category_id").
		OrderExpr("e.event_date ASC, e.id ASC")
}

// ListEvents returns every event, optionally only those with status.
func (d *DB) ListEvents(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	events := make([]models.Event, 0)
	q := d.selectEvents(&events)
	if status != "" {
		q = q.Where("e.status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// SearchEvents AND-combines the set filter fields.
func (d *DB) SearchEvents(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	events := make([]models.Event, 0)
	q := d.selectEvents(&events)

	if name := strings.TrimSpace(f.Name); name != "" {
		pattern := database.ContainsPattern(name)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(e.name) LIKE ? ESCAPE '!'", pattern).
				WhereOr("LOWER(e.description) LIKE ? ESCAPE '!'", pattern)
		})
	}
	if f.Day != nil {
		start := f.Day.UTC().Truncate(24 * time.Hour)
		q = q.Where("e.event_date >= ?", start).
			Where("e.event_date < ?", start.Add(24*time.Hour))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(e.location) LIKE ? ESCAPE '!'", database.ContainsPattern(loc))
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		if id, err := strconv.ParseInt(cat, 10, 64); err == nil {
			q = q.Where("e.category_id = ?", id)
		} else {
			q = q.Where("LOWER(c.name) = ?", strings.ToLower(cat))
		}
	}
	if f.Status != "" {
		q = q.Where("e.status = ?", f.Status)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	events := make([]models.Event, 0, 1)
	err := d.selectEvents(&events).
		Where("e.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: event %d", models.ErrNotFound, id)
	}
	return &events[0], nil
}

// ListRegistrations returns the event's registrations, newest first.
func (d *DB) ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error) {
	regs := make([]models.Registration, 0)
	err := d.Bun.NewSelect().
		Model(&regs).
		Where("r.event_id = ?", eventID).
		OrderExpr("r.registered_at DESC, r.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations for event %d: %w", eventID, err)
	}
	return regs, nil
}

func (d *DB) CategoryExists(ctx context.Context, id int64) (bool, error) {
	exists, err := d.Bun.NewSelect().
		Model((*models.Category)(nil)).
		Where("c.id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check category %d: %w", id, err)
	}
	return exists, nil
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().
		Model(event).
		Returning("id").
		Exec(ctx)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: category %d does not exist", models.ErrValidation, event.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateEvent writes the editable columns. tickets_sold is never touched,
// current_amount only when withAmount is set and status only when withStatus
// is set.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event, withAmount, withStatus bool) error {
	columns := []string{
		"name", "description", "event_date", "location", "category_id",
		"ticket_price", "max_tickets", "goal_amount", "updated_at",
	}
	if withAmount {
		columns = append(columns, "current_amount")
	}
	if withStatus {
		columns = append(columns, "status")
	}

	res, err := d.Bun.NewUpdate().
		Model(event).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: category %d does not exist", models.ErrValidation, event.CategoryID)
	}
	if err != nil {
		return fmt.Errorf("update event %d: %w", event.ID, err)
	}
	return requireRow(res, "event", event.ID)
}

func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: event %d has registrations", models.ErrConflict, id)
	}
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return requireRow(res, "event", id)
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", models.ErrNotFound, entity, id)
	}
	return nil
}
