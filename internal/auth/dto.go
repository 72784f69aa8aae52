package auth

import (
	apperrors "github.com/feebook/feebook/internal"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CurrentUserView struct {
	UserID     int64  `json:"user_id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	ProviderID *int64 `json:"provider_id,omitempty"`
	ConsumerID *int64 `json:"consumer_id,omitempty"`
}

func (d LoginDTO) Validate() error {
	if d.Email == "" {
		return apperrors.NewValidationFieldError("email", "email is required", apperrors.ErrCodeValidationFailed)
	}
	if d.Password == "" {
		return apperrors.NewValidationFieldError("password", "password is required", apperrors.ErrCodeValidationFailed)
	}
	return nil
}
