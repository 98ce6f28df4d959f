package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// PlanRequest данные для создания или обновления плана подписки.
type PlanRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	DurationMonths int      `json:"durationMonths" validate:"required,gt=0"`
	IsActive       bool     `json:"isActive"`
	Features       []string `json:"features"`
	VideoIDs       []string `json:"videoIds,omitempty"`
}

// Plans возвращает все планы подписки (административный список).
func (c *Client) Plans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	const op = "api.Plans"
	var plans []models.SubscriptionPlan
	if err := c.getJSON(ctx, "/subscription-plans", &plans); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// ActivePlans возвращает планы, предлагаемые студентам для подписки.
// Бэкенд отдаёт здесь только планы с isActive=true.
func (c *Client) ActivePlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	const op = "api.ActivePlans"
	var plans []models.SubscriptionPlan
	if err := c.getJSON(ctx, "/subscription-plans/active", &plans); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// Plan возвращает план по идентификатору.
func (c *Client) Plan(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	const op = "api.Plan"
	var plan models.SubscriptionPlan
	if err := c.getJSON(ctx, "/subscription-plans/"+id, &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// CreatePlan создает план подписки.
func (c *Client) CreatePlan(ctx context.Context, req PlanRequest) (*models.SubscriptionPlan, error) {
	const op = "api.CreatePlan"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var plan models.SubscriptionPlan
	if err := c.postJSON(ctx, "/subscription-plans", req, &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// UpdatePlan обновляет план подписки.
func (c *Client) UpdatePlan(ctx context.Context, id string, req PlanRequest) (*models.SubscriptionPlan, error) {
	const op = "api.UpdatePlan"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var plan models.SubscriptionPlan
	if err := c.patchJSON(ctx, "/subscription-plans/"+id, req, &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// DeletePlan удаляет план подписки.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	const op = "api.DeletePlan"
	if err := c.deleteJSON(ctx, "/subscription-plans/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// TogglePlanActive переключает признак isActive плана.
func (c *Client) TogglePlanActive(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	const op = "api.TogglePlanActive"
	var plan models.SubscriptionPlan
	if err := c.patchJSON(ctx, "/subscription-plans/"+id+"/toggle-active", nil, &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &plan, nil
}

// Enrollments возвращает все записи на планы (административный список).
func (c *Client) Enrollments(ctx context.Context) ([]models.Enrollment, error) {
	const op = "api.Enrollments"
	var enrollments []models.Enrollment
	if err := c.getJSON(ctx, "/enrollments", &enrollments); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollments, nil
}

// MyEnrollment возвращает текущую запись пользователя или nil, если записи
// нет. Мягкий 401 и 404 означают отсутствие записи, а не ошибку.
func (c *Client) MyEnrollment(ctx context.Context) (*models.Enrollment, error) {
	const op = "api.MyEnrollment"
	var enrollment models.Enrollment
	err := c.getJSON(ctx, "/enrollments/my-enrollment", &enrollment)
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &enrollment, nil
}

// CheckAccessResponse ответ точки грубой проверки доступа.
type CheckAccessResponse struct {
	HasAccess bool `json:"hasAccess"`
}

// CheckAccess возвращает ответ бэкенда о праве на закрытый контент.
// Мягкий 401 означает отсутствие права, а не ошибку.
func (c *Client) CheckAccess(ctx context.Context) (bool, error) {
	const op = "api.CheckAccess"
	var resp CheckAccessResponse
	err := c.getJSON(ctx, "/enrollments/check-access", &resp)
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return resp.HasAccess, nil
}

// RequestSubscription отправляет заявку на план с ваучером оплаты одним
// multipart-запросом. Сумма не передается: итоговый платеж определяет бэкенд.
func (c *Client) RequestSubscription(ctx context.Context, planID string, voucher FileUpload) (*models.Enrollment, error) {
	const op = "api.RequestSubscription"
	fields := map[string]string{"subscriptionPlanId": planID}
	var enrollment models.Enrollment
	if err := c.postMultipart(ctx, "/enrollments/request-subscription", fields, []FileUpload{voucher}, &enrollment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &enrollment, nil
}

// ApproveEnrollment одобряет заявку (переход pending_payment -> active).
func (c *Client) ApproveEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	const op = "api.ApproveEnrollment"
	var enrollment models.Enrollment
	if err := c.patchJSON(ctx, "/enrollments/"+id+"/approve", nil, &enrollment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &enrollment, nil
}

// RejectEnrollment отклоняет заявку (переход pending_payment -> inactive).
func (c *Client) RejectEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	const op = "api.RejectEnrollment"
	var enrollment models.Enrollment
	if err := c.patchJSON(ctx, "/enrollments/"+id+"/reject", nil, &enrollment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &enrollment, nil
}
