package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
)

// UserRepository defines the interface for identity persistence.
// Implementations return ErrNotFound for missing rows and ErrDuplicate when
// the unique email constraint is violated.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByResetToken finds the user whose stored reset-token digest matches
	// hash and whose expiry is strictly after now.
	GetByResetToken(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
