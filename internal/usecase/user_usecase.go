package usecase

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"userhub/internal/domain/entity"
	"userhub/internal/domain/repository"
	"userhub/internal/domain/service"
	"userhub/pkg/errors"
	"userhub/pkg/logger"
)

const ProfileImageContentType = "image/jpeg"

const (
	MsgFirstNameRequired   = "First name cannot be left empty."
	MsgLastNameRequired    = "Last name cannot be left empty."
	MsgEmailRequired       = "Email cannot be left empty."
	MsgPhoneRequired       = "Phone number cannot be left empty."
	MsgImagePathRequired   = "Image path cannot be left empty."
	MsgSearchQueryRequired = "Search query cannot be left empty."
)

// UserUseCase keeps a user consistent across the record store, the search
// index and the blob store. Writes to different stores are not atomic: a
// failure after the record write leaves the record in place.
type UserUseCase struct {
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	searchIndex  service.SearchIndex
	blobStore    service.BlobStore
	validator    *UserValidator
	cache        ProfileCache
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	searchIndex service.SearchIndex,
	blobStore service.BlobStore,
) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		searchIndex:  searchIndex,
		blobStore:    blobStore,
		validator:    NewUserValidator(userRepo),
		cache:        noopProfileCache{},
	}
}

// SetProfileCache enables caching of GetUser results.
func (uc *UserUseCase) SetProfileCache(cache ProfileCache) {
	if cache == nil {
		cache = noopProfileCache{}
	}
	uc.cache = cache
}

type CreateUserInput struct {
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	FacebookID   string
	Password     string
	SignupMethod string
}

type UpdateUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

type ProfileImage struct {
	Path      string
	MediaLink string
}

// UserProfile is the public view of a user. Image fields are nil when the
// user has no picture.
type UserProfile struct {
	UserID         string  `json:"user_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	PhoneNumber    *string `json:"phone_number"`
	Email          *string `json:"email"`
	ImagePath      *string `json:"image_path"`
	ImageMediaLink *string `json:"image_media_link"`
}

func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	email := NormalizeOptional(input.Email)
	phoneNumber := NormalizeOptional(input.PhoneNumber)
	facebookID := NormalizeOptional(input.FacebookID)
	password := NormalizeOptional(input.Password)

	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := uc.validator.ValidateEmail(ctx, email); err != nil {
		return nil, err
	}
	if err := uc.validator.ValidatePhone(ctx, phoneNumber); err != nil {
		return nil, err
	}

	categoryWeights, err := uc.defaultCategoryWeights(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		Email:                 email,
		IsEmailVerified:       false,
		PhoneNumber:           phoneNumber,
		IsPhoneNumberVerified: false,
		Password:              password,
		FacebookID:            facebookID,
		SignupMethod:          input.SignupMethod,
		CategoryWeights:       categoryWeights,
		LastKnownLocation:     entity.DefaultLocation,
		Credit:                0.0,
		Debit:                 0.0,
		DateCreated:           now,
		DateLastModified:      now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, errors.Storage(err)
	}
	logger.Debug("Created user %s", user.ID)

	if err := uc.searchIndex.Put(ctx, entity.NewUserSearchDocument(user)); err != nil {
		logger.Warn("User %s stored but not indexed: %v", user.ID, err)
		return nil, errors.Storage(err)
	}

	return user, nil
}

func (uc *UserUseCase) defaultCategoryWeights(ctx context.Context) ([]entity.CategoryWeight, error) {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}

	weights := make([]entity.CategoryWeight, 0, len(categories))
	for _, category := range categories {
		weights = append(weights, entity.CategoryWeight{
			CategoryID: category.ID,
			Weight:     entity.DefaultCategoryWeight,
		})
	}
	return weights, nil
}

func (uc *UserUseCase) UploadProfileImage(ctx context.Context, userID string, file io.Reader, size int64) (*ProfileImage, error) {
	if _, err := uc.getUser(ctx, userID, MsgImageUserNotFound); err != nil {
		return nil, err
	}

	path := entity.ProfileImagePath(userID)
	mediaLink, err := uc.blobStore.Upload(ctx, path, file, ProfileImageContentType, size)
	if err != nil {
		return nil, errors.Storage(err)
	}
	uc.cache.Delete(ctx, userID)

	return &ProfileImage{Path: path, MediaLink: mediaLink}, nil
}

// DeleteProfileImage removes the blob at path. The path is not checked
// against any user.
func (uc *UserUseCase) DeleteProfileImage(ctx context.Context, path string) (time.Time, error) {
	if path == "" {
		return time.Time{}, errors.Validation(MsgImagePathRequired)
	}

	if err := uc.blobStore.Delete(ctx, path); err != nil {
		return time.Time{}, errors.Storage(err)
	}
	if userID, ok := entity.ProfileImageOwner(path); ok {
		uc.cache.Delete(ctx, userID)
	}

	return time.Now(), nil
}

// DeleteUser removes the record and the search document. The profile
// picture is left in the blob store.
func (uc *UserUseCase) DeleteUser(ctx context.Context, userID string) (time.Time, error) {
	if err := uc.userRepo.Delete(ctx, userID); err != nil {
		return time.Time{}, errors.Storage(err)
	}
	uc.cache.Delete(ctx, userID)

	if err := uc.searchIndex.Delete(ctx, userID); err != nil {
		logger.Warn("User %s deleted but search document remains: %v", userID, err)
		return time.Time{}, errors.Storage(err)
	}

	return time.Now(), nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, userID string) (*UserProfile, error) {
	if profile, ok := uc.cache.Get(ctx, userID); ok {
		return profile, nil
	}
	version, cacheable := uc.cache.Version(ctx, userID)

	user, err := uc.getUser(ctx, userID, MsgUserNotFound)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{
		UserID:      user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Email:       user.Email,
	}

	path := entity.ProfileImagePath(user.ID)
	mediaLink, err := uc.blobStore.MediaLink(ctx, path)
	switch {
	case err == nil:
		profile.ImagePath = &path
		profile.ImageMediaLink = &mediaLink
	case stderrors.Is(err, service.ErrBlobNotFound):
		// no picture uploaded yet
	default:
		return nil, errors.Storage(err)
	}

	if cacheable {
		uc.cache.SetAt(ctx, userID, version, profile)
	}
	return profile, nil
}

func (uc *UserUseCase) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*entity.User, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	user, err := uc.getUser(ctx, userID, MsgUserNotFound)
	if err != nil {
		return nil, err
	}

	emailChanged := user.Email == nil || *user.Email != input.Email
	phoneChanged := user.PhoneNumber == nil || *user.PhoneNumber != input.PhoneNumber

	if emailChanged {
		if err := uc.validator.ValidateEmail(ctx, &input.Email); err != nil {
			return nil, err
		}
	}
	if phoneChanged {
		if err := uc.validator.ValidatePhone(ctx, &input.PhoneNumber); err != nil {
			return nil, err
		}
	}

	if emailChanged {
		user.IsEmailVerified = false
	}
	if phoneChanged {
		user.IsPhoneNumberVerified = false
	}

	email, phoneNumber := input.Email, input.PhoneNumber
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = &email
	user.PhoneNumber = &phoneNumber
	user.DateLastModified = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Storage(err)
	}
	uc.cache.Delete(ctx, userID)

	if err := uc.searchIndex.Put(ctx, entity.NewUserSearchDocument(user)); err != nil {
		logger.Warn("User %s updated but search document is stale: %v", userID, err)
		return nil, errors.Storage(err)
	}

	return user, nil
}

func validateUpdateInput(input UpdateUserInput) error {
	switch {
	case input.FirstName == "":
		return errors.Validation(MsgFirstNameRequired)
	case input.LastName == "":
		return errors.Validation(MsgLastNameRequired)
	case input.Email == "":
		return errors.Validation(MsgEmailRequired)
	case input.PhoneNumber == "":
		return errors.Validation(MsgPhoneRequired)
	}
	return nil
}

func (uc *UserUseCase) SearchUsers(ctx context.Context, term string, limit, offset int) ([]entity.UserSearchDocument, int64, error) {
	term = entity.NormalizeSearchTerm(term)
	if term == "" {
		return nil, 0, errors.Validation(MsgSearchQueryRequired)
	}

	docs, total, err := uc.searchIndex.Search(ctx, term, limit, offset)
	if err != nil {
		return nil, 0, errors.Storage(err)
	}
	return docs, total, nil
}

func (uc *UserUseCase) getUser(ctx context.Context, userID, notFoundMessage string) (*entity.User, error) {
	if userID == "" {
		return nil, errors.NotFound(notFoundMessage, nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound(notFoundMessage, err)
		}
		return nil, errors.Storage(err)
	}
	return user, nil
}
