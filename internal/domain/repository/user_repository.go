package repository

import (
	"context"
	"errors"

	"userhub/internal/domain/entity"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("record not found")

// Field names accepted by UserRepository.FindOneByField.
const (
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
)

type UserRepository interface {
	// Create stores a new user and assigns user.ID.
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// FindOneByField returns the first user whose field equals value.
	FindOneByField(ctx context.Context, field, value string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// Delete succeeds when the id does not exist.
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*entity.Category, error)
}
