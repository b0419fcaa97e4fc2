package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/repository"
)

// UserRepository stands in for Firestore when STORAGE_BACKEND=memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*entity.User)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = uuid.NewString()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *UserRepository) FindOneByField(ctx context.Context, field, value string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		user := r.users[id]
		var got *string
		switch field {
		case repository.FieldEmail:
			got = user.Email
		case repository.FieldPhoneNumber:
			got = user.PhoneNumber
		default:
			return nil, repository.ErrNotFound
		}
		if got != nil && *got == value {
			return cloneUser(user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}

// Len reports the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Email = cloneString(u.Email)
	c.PhoneNumber = cloneString(u.PhoneNumber)
	c.Password = cloneString(u.Password)
	c.FacebookID = cloneString(u.FacebookID)
	c.CategoryWeights = append([]entity.CategoryWeight(nil), u.CategoryWeights...)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// CategoryRepository serves a fixed category list.
type CategoryRepository struct {
	categories []*entity.Category
}

func NewCategoryRepository(categories ...*entity.Category) *CategoryRepository {
	return &CategoryRepository{categories: categories}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	out := make([]*entity.Category, len(r.categories))
	for i, c := range r.categories {
		cc := *c
		out[i] = &cc
	}
	return out, nil
}
