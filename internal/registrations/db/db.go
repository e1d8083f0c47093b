package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"charity-events/internal/database"
	"charity-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// CreateRegistration inserts reg and books its tickets on the event in one
// transaction. The event must exist and be upcoming, must have room for
// reg.Tickets when it has a limit, and must not already hold a registration
// for reg.Email. It returns the event name.
func (d *DB) CreateRegistration(ctx context.Context, reg *models.Registration) (string, error) {
	var eventName string

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		err := tx.NewSelect().
			Model(&event).
			Column("id", "name", "status", "ticket_price").
			Where("e.id = ?", reg.EventID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: event %d", models.ErrNotFound, reg.EventID)
		}
		if err != nil {
			return fmt.Errorf("load event %d: %w", reg.EventID, err)
		}
		if event.Status != models.StatusUpcoming {
			return fmt.Errorf("%w: event %d is %s and not open for registration", models.ErrConflict, event.ID, event.Status)
		}

		res, err := tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("tickets_sold = tickets_sold + ?", reg.Tickets).
			Set("current_amount = current_amount + ?", float64(reg.Tickets)*event.TicketPrice).
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", event.ID).
			Where("(max_tickets = 0 OR tickets_sold + ? <= max_tickets)", reg.Tickets).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("book tickets for event %d: %w", event.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: not enough tickets left for event %d", models.ErrConflict, event.ID)
		}

		_, err = tx.NewInsert().
			Model(reg).
			Returning("id").
			Exec(ctx)
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s is already registered for event %d", models.ErrConflict, reg.Email, event.ID)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: event %d", models.ErrNotFound, reg.EventID)
		}
		if err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}

		eventName = event.Name
		return nil
	})
	if err != nil {
		return "", err
	}
	return eventName, nil
}

func (d *DB) selectRegistrations(regs *[]models.Registration) *bun.SelectQuery {
	return d.Bun.NewSelect().
		Model(regs).
		ColumnExpr("r.*").
		ColumnExpr("e.name AS event_name").
		Join("LEFT JOIN events AS e ON e.id = r.event_id").
		OrderExpr("r.registered_at DESC, r.id DESC")
}

// ListRegistrations returns registrations newest first, for one event when
// eventID is set.
func (d *DB) ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error) {
	regs := make([]models.Registration, 0)
	q := d.selectRegistrations(&regs)
	if eventID > 0 {
		q = q.Where("r.event_id = ?", eventID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

func (d *DB) GetRegistrationByID(ctx context.Context, id int64) (*models.Registration, error) {
	regs := make([]models.Registration, 0, 1)
	err := d.selectRegistrations(&regs).
		Where("r.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get registration %d: %w", id, err)
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("%w: registration %d", models.ErrNotFound, id)
	}
	return &regs[0], nil
}
