package usecase

import (
	"context"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"userhub/internal/domain/entity"
	"userhub/internal/infrastructure/memory"
	apperrors "userhub/pkg/errors"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindOneByField(ctx context.Context, field, value string) (*entity.User, error) {
	args := m.Called(ctx, field, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSearchIndex struct {
	mock.Mock
}

func (m *MockSearchIndex) Put(ctx context.Context, doc entity.UserSearchDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockSearchIndex) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSearchIndex) Search(ctx context.Context, term string, limit, offset int) ([]entity.UserSearchDocument, int64, error) {
	args := m.Called(ctx, term, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.UserSearchDocument), args.Get(1).(int64), args.Error(2)
}

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, path string, r io.Reader, contentType string, size int64) (string, error) {
	args := m.Called(ctx, path, r, contentType, size)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) MediaLink(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// fakeProfileCache records cache traffic in memory and versions keys the
// way the Redis cache does.
type fakeProfileCache struct {
	profiles map[string]UserProfile
	versions map[string]int64
	hits     int
	deletes  []string
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{
		profiles: make(map[string]UserProfile),
		versions: make(map[string]int64),
	}
}

func (f *fakeProfileCache) Get(_ context.Context, userID string) (*UserProfile, bool) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, false
	}
	f.hits++
	return &p, true
}

func (f *fakeProfileCache) Version(_ context.Context, userID string) (int64, bool) {
	return f.versions[userID], true
}

func (f *fakeProfileCache) SetAt(_ context.Context, userID string, version int64, profile *UserProfile) {
	if f.versions[userID] != version {
		return
	}
	f.profiles[userID] = *profile
}

func (f *fakeProfileCache) Delete(_ context.Context, userID string) {
	delete(f.profiles, userID)
	f.versions[userID]++
	f.deletes = append(f.deletes, userID)
}

// interleavingUserRepository runs afterGet once, right after the first
// GetByID returns, to simulate a write landing mid-read.
type interleavingUserRepository struct {
	*memory.UserRepository
	afterGet func()
}

func (r *interleavingUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, err := r.UserRepository.GetByID(ctx, id)
	if hook := r.afterGet; hook != nil {
		r.afterGet = nil
		hook()
	}
	return user, err
}

func requireAppError(t *testing.T, err error, code, message string) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, stderrors.As(err, &appErr), "expected *AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
	if message != "" {
		require.Equal(t, message, appErr.Message)
	}
	return appErr
}
