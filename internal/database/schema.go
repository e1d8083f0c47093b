package database

import (
	"context"
	"fmt"

	"charity-events/internal/models"

	"github.com/uptrace/bun"
)

// CreateSchema creates the tables and indexes from the models. It is used for
// SQLite; Postgres deployments run the SQL migrations instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().
			Model((*models.Category)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create categories: %w", err)
		}

		if _, err := tx.NewCreateTable().
			Model((*models.Event)(nil)).
			IfNotExists().
			ForeignKey(`("category_id") REFERENCES "categories" ("id") ON DELETE RESTRICT`).
			Exec(ctx); err != nil {
			return fmt.Errorf("create events: %w", err)
		}

		if _, err := tx.NewCreateTable().
			Model((*models.Registration)(nil)).
			IfNotExists().
			ForeignKey(`("event_id") REFERENCES "events" ("id") ON DELETE RESTRICT`).
			Exec(ctx); err != nil {
			return fmt.Errorf("create registrations: %w", err)
		}

		indexes := []struct {
			query *bun.CreateIndexQuery
			name  string
		}{
			{tx.NewCreateIndex().Model((*models.Event)(nil)).Index("idx_events_event_date").Column("event_date"), "idx_events_event_date"},
			{tx.NewCreateIndex().Model((*models.Event)(nil)).Index("idx_events_category_id").Column("category_id"), "idx_events_category_id"},
			{tx.NewCreateIndex().Model((*models.Registration)(nil)).Unique().Index("ux_registrations_event_email").Column("event_id", "email"), "ux_registrations_event_email"},
		}
		for _, idx := range indexes {
			if _, err := idx.query.IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("create index %s: %w", idx.name, err)
			}
		}
		return nil
	})
}
