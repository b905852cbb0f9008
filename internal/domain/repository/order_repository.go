package repository

import (
	"context"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
)

// OrderRepository defines order persistence. Create stores the order together
// with its items.
type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	ListAll(ctx context.Context) ([]entity.Order, error)
	Update(ctx context.Context, o *entity.Order) error
}
