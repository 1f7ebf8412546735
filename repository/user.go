package repository

import (
	"context"

	"github.com/fastygo/tracker/domain"
)

// UserRepository is the identity lookup used by the task and project services.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
}
