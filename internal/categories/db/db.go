package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"charity-events/internal/database"
	"charity-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ListCategories returns all categories by name. withCounts adds the number
// of events in each.
func (d *DB) ListCategories(ctx context.Context, withCounts bool) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	q := d.Bun.NewSelect().
		Model(&categories).
		OrderExpr("c.name ASC")
	if withCounts {
		q = q.ColumnExpr("c.*").
			ColumnExpr("(SELECT COUNT(*) FROM events AS e WHERE e.category_id = c.id) AS event_count")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (d *DB) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := d.Bun.NewSelect().
		Model(&category).
		Where("c.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &category, nil
}

func (d *DB) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := d.Bun.NewInsert().
		Model(category).
		Returning("id").
		Exec(ctx)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: category %q already exists", models.ErrConflict, category.Name)
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (d *DB) UpdateCategory(ctx context.Context, category *models.Category) error {
	res, err := d.Bun.NewUpdate().
		Model(category).
		Column("name", "description").
		WherePK().
		Exec(ctx)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: category %q already exists", models.ErrConflict, category.Name)
	}
	if err != nil {
		return fmt.Errorf("update category %d: %w", category.ID, err)
	}
	return requireRow(res, category.ID)
}

func (d *DB) DeleteCategory(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: category %d still has events", models.ErrConflict, id)
	}
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %d", models.ErrNotFound, id)
	}
	return nil
}
