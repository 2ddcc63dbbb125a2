package services

import (
	"context"

	"github.com/stockroom/backend/internal/models"
)

// ItemService is the item repository. Every method makes at most one store
// round trip and reports failures as *apperror.Error.
type ItemService interface {
	// List returns all items, newest first.
	List(ctx context.Context) ([]models.Item, error)
	Create(ctx context.Context, in models.CreateItemInput) (*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	// Update applies a partial update and returns the item as stored
	// afterwards.
	Update(ctx context.Context, id string, in models.UpdateItemInput) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}
