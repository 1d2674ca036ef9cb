package services

import (
	"context"
	"strings"

	"task-manager/api/internal/apperrors"
	"task-manager/api/internal/models"
	"task-manager/api/internal/repositories"

	"github.com/gofrs/uuid"
)

type ItemService interface {
	List(ctx context.Context) ([]models.Item, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, p Principal, title, description string) (*models.Item, error)
	Update(ctx context.Context, p Principal, id uuid.UUID, title string, description *string) (*models.Item, error)
	Delete(ctx context.Context, p Principal, id uuid.UUID) error
}

type ItemServiceImpl struct {
	items repositories.ItemRepository
}

func NewItemService(items repositories.ItemRepository) *ItemServiceImpl {
	return &ItemServiceImpl{items: items}
}

func (s *ItemServiceImpl) List(ctx context.Context) ([]models.Item, error) {
	return s.items.List(ctx)
}

func (s *ItemServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.items.FindByID(ctx, id)
}

func (s *ItemServiceImpl) Create(ctx context.Context, p Principal, title, description string) (*models.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, (&apperrors.ValidationError{}).Add("title", "title is required")
	}
	item := &models.Item{
		ID:          uuid.Must(uuid.NewV4()),
		Title:       title,
		Description: strings.TrimSpace(description),
		OwnerID:     p.UserID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update stores "Untitled" when the new title is blank.
func (s *ItemServiceImpl) Update(ctx context.Context, p Principal, id uuid.UUID, title string, description *string) (*models.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.CanAccess(item.OwnerID); err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(title)
	if item.Title == "" {
		item.Title = models.UntitledItem
	}
	if description != nil {
		item.Description = strings.TrimSpace(*description)
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemServiceImpl) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.CanAccess(item.OwnerID); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}
