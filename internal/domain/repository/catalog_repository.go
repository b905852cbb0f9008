package repository

import (
	"context"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
)

// ProductFilter narrows product listings; zero values mean "no filter".
type ProductFilter struct {
	Keyword    string // case-insensitive substring match on name
	CategoryID string
	Page       int
	PageSize   int
}

// ProductRepository defines catalog item persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, f ProductFilter) ([]entity.Product, int, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
	// DecrementStock subtracts qty from the product's stock count.
	DecrementStock(ctx context.Context, id string, qty int) error
}

// CategoryRepository defines category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	ListByParent(ctx context.Context, parentID *string) ([]entity.Category, error)
}
