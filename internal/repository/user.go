package repository

import (
	"context"

	"infra-catalog/internal/domain"
)

// UserRepository is the persistence port for auth users. It is the sole
// writer of user rows; credential strategies only read and request writes
// through it. Email and phone uniqueness is enforced here by unique
// indexes, and a violation surfaces as ErrDuplicate.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.AuthUser, passwordHash string) error
	FindByID(ctx context.Context, id string) (*domain.AuthUser, error)
	FindByEmail(ctx context.Context, email string) (*domain.AuthUser, error)
	FindByPhone(ctx context.Context, phone string) (*domain.AuthUser, error)
	FindByCode(ctx context.Context, code string) (*domain.AuthUser, error)
	GetPasswordHashByEmail(ctx context.Context, email string) (string, error)
}
