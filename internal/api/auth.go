package api

import (
	"context"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// LoginRequest — структура входных данных для авторизации.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest — структура входных данных для регистрации.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,min=2"`
}

// AuthResponse ответ бэкенда на вход или регистрацию.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Login обменивает учетные данные на токен и пользователя.
// Поля проверяются до сетевого вызова; нарушения возвращаются как
// ErrValidation с перечнем проблемных полей.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	const op = "api.Login"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var resp AuthResponse
	if err := c.postJSON(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// Register создает учетную запись и возвращает токен с пользователем.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	const op = "api.Register"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var resp AuthResponse
	if err := c.postJSON(ctx, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// Profile возвращает профиль текущего пользователя.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	const op = "api.Profile"
	var user models.User
	if err := c.getJSON(ctx, "/auth/profile", &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
