package stats

import (
	"context"
	"fmt"

	"charity-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// Money sums default to 0.0: SQLite returns an integer 0 otherwise, which
// does not scan into float64.
func (d *DB) EventTotals(ctx context.Context) (models.EventTotals, error) {
	var totals models.EventTotals
	err := d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		ColumnExpr("COUNT(*) AS total_events").
		ColumnExpr("COALESCE(SUM(CASE WHEN e.status = ? THEN 1 ELSE 0 END), 0) AS upcoming_events", models.StatusUpcoming).
		ColumnExpr("COALESCE(SUM(CASE WHEN e.status = ? THEN 1 ELSE 0 END), 0) AS past_events", models.StatusPast).
		ColumnExpr("COALESCE(SUM(CASE WHEN e.status = ? THEN 1 ELSE 0 END), 0) AS suspended_events", models.StatusSuspended).
		ColumnExpr("COALESCE(SUM(e.tickets_sold), 0) AS total_tickets_sold").
		ColumnExpr("COALESCE(SUM(e.current_amount), 0.0) AS total_raised").
		ColumnExpr("COALESCE(SUM(e.goal_amount), 0.0) AS total_goal").
		Scan(ctx, &totals)
	if err != nil {
		return totals, fmt.Errorf("event totals: %w", err)
	}
	return totals, nil
}

func (d *DB) RegistrationTotals(ctx context.Context) (models.RegistrationTotals, error) {
	var totals models.RegistrationTotals
	err := d.Bun.NewSelect().
		Model((*models.Registration)(nil)).
		ColumnExpr("COUNT(*) AS total_registrations").
		ColumnExpr("COALESCE(SUM(r.tickets), 0) AS total_tickets").
		Scan(ctx, &totals)
	if err != nil {
		return totals, fmt.Errorf("registration totals: %w", err)
	}
	return totals, nil
}

// CategoryStats returns one row per category, including empty ones.
func (d *DB) CategoryStats(ctx context.Context) ([]models.CategoryStats, error) {
	rows := make([]models.CategoryStats, 0)
	err := d.Bun.NewRaw(`
		SELECT c.id, c.name,
			COUNT(e.id) AS event_count,
			COALESCE(SUM(e.tickets_sold), 0) AS tickets_sold,
			COALESCE(SUM(e.current_amount), 0.0) AS total_raised
		FROM categories AS c
		LEFT JOIN events AS e ON e.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name ASC`).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	return rows, nil
}
