package handler

import (
	"fmt"
	"net/url"

	"github.com/labstack/echo/v4"

	"userhub/internal/domain/entity"
	"userhub/internal/usecase"
	"userhub/pkg/errors"
	"userhub/pkg/logger"
	"userhub/pkg/response"
	"userhub/pkg/utils"
)

const (
	msgInvalidBody      = "Invalid request body."
	msgMissingImage     = "No image file provided in field \"userfile\"."
	msgInvalidImagePath = "Image path is not a valid URL path."
)

type UserHandler struct {
	userUseCase  *usecase.UserUseCase
	maxImageSize int64
}

func NewUserHandler(userUseCase *usecase.UserUseCase, maxImageSize int64) *UserHandler {
	return &UserHandler{
		userUseCase:  userUseCase,
		maxImageSize: maxImageSize,
	}
}

type createUserRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	FacebookID   string `json:"facebook_id"`
	Password     string `json:"password"`
	SignupMethod string `json:"signup_method"`
}

type updateUserRequest struct {
	FirstName   string `json:"first_name" validate:"required" label:"First name"`
	LastName    string `json:"last_name" validate:"required" label:"Last name"`
	Email       string `json:"email" validate:"required" label:"Email"`
	PhoneNumber string `json:"phone_number" validate:"required" label:"Phone number"`
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		logger.Debug("Error binding create request: %v", err)
		return response.Error(c, errors.Validation(msgInvalidBody))
	}

	user, err := h.userUseCase.CreateUser(c.Request().Context(), usecase.CreateUserInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		FacebookID:   req.FacebookID,
		Password:     req.Password,
		SignupMethod: req.SignupMethod,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"user_id":            user.ID,
		"date_created":       response.Timestamp(user.DateCreated),
		"date_last_modified": response.Timestamp(user.DateLastModified),
	})
}

func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	userID := c.Param("user_id")

	file, err := c.FormFile("userfile")
	if err != nil {
		logger.Debug("Error getting userfile from form: %v", err)
		return response.Error(c, errors.Validation(msgMissingImage))
	}

	if h.maxImageSize > 0 && file.Size > h.maxImageSize {
		logger.Warn("Image too large for user %s: %d bytes (max: %d)", userID, file.Size, h.maxImageSize)
		return response.Error(c, errors.Validation(
			fmt.Sprintf("Image exceeds the maximum size of %d bytes.", h.maxImageSize)))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal(err))
	}
	defer src.Close()

	image, err := h.userUseCase.UploadProfileImage(c.Request().Context(), userID, src, file.Size)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"image_path":       image.Path,
		"image_media_link": image.MediaLink,
	})
}

func (h *UserHandler) DeleteProfileImage(c echo.Context) error {
	path, err := wildcardPath(c)
	if err != nil {
		return response.Error(c, errors.Validation(msgInvalidImagePath))
	}

	deletedAt, err := h.userUseCase.DeleteProfileImage(c.Request().Context(), path)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"deleted_path": path,
		"date_deleted": response.Timestamp(deletedAt),
	})
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID := c.Param("user_id")

	deletedAt, err := h.userUseCase.DeleteUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"user_id":      userID,
		"date_deleted": response.Timestamp(deletedAt),
	})
}

func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.userUseCase.GetUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		logger.Debug("Error binding update request: %v", err)
		return response.Error(c, errors.Validation(msgInvalidBody))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateUser(c.Request().Context(), c.Param("user_id"), usecase.UpdateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"first_name":               user.FirstName,
		"last_name":                user.LastName,
		"phone_number":             entity.StringValue(user.PhoneNumber),
		"is_phone_number_verified": user.IsPhoneNumberVerified,
		"email":                    entity.StringValue(user.Email),
		"is_email_verified":        user.IsEmailVerified,
		"date_last_modified":       response.Timestamp(user.DateLastModified),
	})
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	docs, total, err := h.userUseCase.SearchUsers(c.Request().Context(), c.QueryParam("q"), params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	if docs == nil {
		docs = []entity.UserSearchDocument{}
	}

	return response.Paginated(c, docs, total, params.Page, params.PageSize)
}

// wildcardPath returns the decoded "*" route param. echo matches on RawPath
// when the request has one, and the param is then still escaped; otherwise
// it is already decoded and must not be unescaped again.
func wildcardPath(c echo.Context) (string, error) {
	path := c.Param("*")
	if c.Request().URL.RawPath == "" {
		return path, nil
	}
	return url.PathUnescape(path)
}
