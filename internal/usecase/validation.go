package usecase

import (
	"context"
	stderrors "errors"

	"userhub/internal/domain/repository"
	"userhub/pkg/errors"
)

const MinPasswordLength = 8

const (
	MsgPasswordTooShort  = "Password is too short."
	MsgEmailRegistered   = "Email address is already registered."
	MsgPhoneRegistered   = "Phone number is already registered."
	MsgUserNotFound      = "User ID does not match any existing user"
	MsgImageUserNotFound = "UserID does not match any existing user"
)

// NormalizeOptional turns a blank input into an absent value.
func NormalizeOptional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ValidatePassword accepts an absent password or one of at least MinPasswordLength characters.
func ValidatePassword(password *string) error {
	if password != nil && len([]rune(*password)) < MinPasswordLength {
		return errors.Validation(MsgPasswordTooShort)
	}
	return nil
}

// UserValidator checks the uniqueness rules that need the record store.
type UserValidator struct {
	userRepo repository.UserRepository
}

func NewUserValidator(userRepo repository.UserRepository) *UserValidator {
	return &UserValidator{userRepo: userRepo}
}

func (v *UserValidator) ValidateEmail(ctx context.Context, email *string) error {
	return v.ensureUnused(ctx, repository.FieldEmail, email, MsgEmailRegistered)
}

func (v *UserValidator) ValidatePhone(ctx context.Context, phoneNumber *string) error {
	return v.ensureUnused(ctx, repository.FieldPhoneNumber, phoneNumber, MsgPhoneRegistered)
}

func (v *UserValidator) ensureUnused(ctx context.Context, field string, value *string, message string) error {
	if value == nil {
		return nil
	}

	_, err := v.userRepo.FindOneByField(ctx, field, *value)
	switch {
	case err == nil:
		return errors.Validation(message)
	case stderrors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return errors.Storage(err)
	}
}
