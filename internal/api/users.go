package api

import (
	"context"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// UserRequest данные для создания или обновления пользователя администратором.
type UserRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	FullName string      `json:"fullName" validate:"required,min=2"`
	Password string      `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=admin student"`
	IsActive bool        `json:"isActive"`
}

// Users возвращает всех пользователей (административный список).
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	const op = "api.Users"
	var users []models.User
	if err := c.getJSON(ctx, "/users", &users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// CreateUser создает пользователя.
func (c *Client) CreateUser(ctx context.Context, req UserRequest) (*models.User, error) {
	const op = "api.CreateUser"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var user models.User
	if err := c.postJSON(ctx, "/users", req, &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// UpdateUser обновляет пользователя.
func (c *Client) UpdateUser(ctx context.Context, id string, req UserRequest) (*models.User, error) {
	const op = "api.UpdateUser"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var user models.User
	if err := c.patchJSON(ctx, "/users/"+id, req, &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// DeleteUser удаляет пользователя.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	const op = "api.DeleteUser"
	if err := c.deleteJSON(ctx, "/users/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
