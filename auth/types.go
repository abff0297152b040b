package auth

import (
	"github.com/go-playground/validator/v10"

	"example.com/campus-market/apierr"
	"example.com/campus-market/session"
)

// validate — общий валидатор запросов пакета.
var validate = validator.New()

// LoginRequest — параметры входа.
// account принимает имя пользователя или email.
type LoginRequest struct {
	Account  string `json:"account" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult — ответ сервера на вход: токен и данные пользователя.
type LoginResult struct {
	Token string           `json:"token"`
	User  session.UserInfo `json:"user"`
}

// RegisterRequest — параметры регистрации.
type RegisterRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=32"`
	Password   string `json:"password" validate:"required,min=6"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Department string `json:"department,omitempty"`
}

// Validate проверяет параметры регистрации до отправки запроса.
func (r *RegisterRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return apierr.Newf(apierr.KindValidation, "некорректные данные регистрации: %v", err)
	}
	return nil
}

// UpdateUserInfoRequest — изменяемые поля профиля.
type UpdateUserInfoRequest struct {
	Nickname   string `json:"nickname,omitempty"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// Validate проверяет параметры обновления профиля до отправки запроса.
func (r *UpdateUserInfoRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return apierr.Newf(apierr.KindValidation, "некорректные данные профиля: %v", err)
	}
	return nil
}
