package categories

import (
	"context"
	"strings"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/notify"
	"charity-events/internal/utils"
)

type CategoryDBLayer interface {
	ListCategories(ctx context.Context, withCounts bool) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type CategoryService struct {
	DB        CategoryDBLayer
	Publisher notify.Publisher
	Logger    *logger.Logger
}

func NewCategoryService(db CategoryDBLayer, publisher notify.Publisher, log *logger.Logger) *CategoryService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &CategoryService{DB: db, Publisher: publisher, Logger: log}
}

func (s *CategoryService) List(ctx context.Context, withCounts bool) ([]models.Category, error) {
	return s.DB.ListCategories(ctx, withCounts)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*models.Category, error) {
	return s.DB.GetCategoryByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, in models.CategoryInput) (int64, error) {
	in, err := clean(in)
	if err != nil {
		return 0, err
	}
	category := &models.Category{
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.DB.CreateCategory(ctx, category); err != nil {
		return 0, err
	}
	s.changed(ctx, models.ActionCreated, category.ID, category.Name)
	return category.ID, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, in models.CategoryInput) error {
	in, err := clean(in)
	if err != nil {
		return err
	}
	category := &models.Category{ID: id, Name: in.Name, Description: in.Description}
	if err := s.DB.UpdateCategory(ctx, category); err != nil {
		return err
	}
	s.changed(ctx, models.ActionUpdated, id, category.Name)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.DB.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, models.ActionDeleted, id, "")
	return nil
}

func clean(in models.CategoryInput) (models.CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in, utils.Validate(in)
}

func (s *CategoryService) changed(ctx context.Context, action string, id int64, name string) {
	if s.Logger != nil {
		s.Logger.Info("CATEGORY", "["+action+"] "+name)
	}
	s.Publisher.Publish(ctx, notify.NewChange(models.EntityCategory, action, id))
}
