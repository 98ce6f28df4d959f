package api

import (
	"context"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// CategoryRequest данные для создания или обновления категории.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Categories возвращает все категории.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "api.Categories"
	var categories []models.Category
	if err := c.getJSON(ctx, "/categories", &categories); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// CreateCategory создает категорию.
func (c *Client) CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	const op = "api.CreateCategory"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var category models.Category
	if err := c.postJSON(ctx, "/categories", req, &category); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &category, nil
}

// UpdateCategory обновляет категорию.
func (c *Client) UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*models.Category, error) {
	const op = "api.UpdateCategory"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var category models.Category
	if err := c.patchJSON(ctx, "/categories/"+id, req, &category); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &category, nil
}

// DeleteCategory удаляет категорию.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	const op = "api.DeleteCategory"
	if err := c.deleteJSON(ctx, "/categories/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
