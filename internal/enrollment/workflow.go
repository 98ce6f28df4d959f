package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/access"
	"github.com/magabrotheeeer/video-subscription-client/internal/api"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
	"github.com/magabrotheeeer/video-subscription-client/internal/querygate"
)

// Ключи кеша рабочего процесса.
const (
	// KeyMyEnrollment — текущая запись пользователя.
	KeyMyEnrollment = "my-enrollment"
	// KeyEnrollments — административный список записей.
	KeyEnrollments = "enrollments"
)

var (
	// ErrSubmitPending — повторная подача при неразрешённой заявке
	// запрещена еще на клиенте, до сетевого вызова.
	ErrSubmitPending = errors.New("a subscription request is already awaiting approval")
	// ErrDuplicateSubscription — бэкенд сообщил о конфликте. Сообщение
	// отличимо от общего отказа: это контракт UX, а не просто проброс ошибки.
	ErrDuplicateSubscription = errors.New("you already have an active subscription or a pending request")
	// ErrBusy — другая мутация рабочего процесса еще выполняется
	// (аналог выключенной кнопки на время запроса).
	ErrBusy = errors.New("another enrollment operation is in progress")
	// ErrNotPending — одобрение/отклонение допустимо только из pending_payment.
	ErrNotPending = errors.New("enrollment is not awaiting approval")
)

// State состояние рабочего процесса подписки студента.
type State string

const (
	// StateNone — записи нет вовсе
	StateNone State = "none"
	// StatePendingPayment — заявка ждет решения администратора
	StatePendingPayment State = "pending_payment"
	// StateActive — подписка действует
	StateActive State = "active"
	// StateInactive — заявка отклонена
	StateInactive State = "inactive"
	// StateExpired — подписка истекла
	StateExpired State = "expired"
)

// submitRequest проверяемые метаданные заявки.
type submitRequest struct {
	PlanID string `validate:"required,uuid"`
}

// Workflow управляет жизненным циклом заявки: submit со стороны студента,
// approve/reject со стороны администратора. Переходы статуса выполняет
// только бэкенд; клиент лишь не дает отправить заведомо недопустимое.
type Workflow struct {
	api          *api.Client
	gate         *querygate.Gate
	myEnrollment *querygate.Query
	enrollments  *querygate.Query
	validate     *validator.Validate
	log          *slog.Logger

	mu   sync.Mutex
	busy bool
}

// New создает рабочий процесс и регистрирует чтение "моя запись" в шлюзе
// запросов: без токена оно не выполняется, отсутствие записи — не ошибка.
func New(apiClient *api.Client, gate *querygate.Gate, log *slog.Logger) (*Workflow, error) {
	const op = "enrollment.New"

	q, err := gate.Register(KeyMyEnrollment, func(ctx context.Context) (any, error) {
		return apiClient.MyEnrollment(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// административный список регистрируется выключенным, чтобы вход
	// студента не запускал заведомо запрещенное ему чтение
	qList, err := gate.RegisterWithCondition(KeyEnrollments, func(ctx context.Context) (any, error) {
		return apiClient.Enrollments(ctx)
	}, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Workflow{
		api:          apiClient,
		gate:         gate,
		myEnrollment: q,
		enrollments:  qList,
		validate:     validator.New(),
		log:          log,
	}, nil
}

// Current возвращает текущую запись пользователя или nil, если записи нет.
func (w *Workflow) Current(ctx context.Context) (*models.Enrollment, error) {
	const op = "enrollment.Current"
	var enrollment *models.Enrollment
	if err := w.myEnrollment.Get(ctx, &enrollment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollment, nil
}

// State возвращает состояние рабочего процесса, производное от текущей записи.
func (w *Workflow) State(ctx context.Context) (State, error) {
	enrollment, err := w.Current(ctx)
	if err != nil {
		return StateNone, err
	}
	if enrollment == nil {
		return StateNone, nil
	}
	return State(enrollment.Status), nil
}

// Submit отправляет заявку на план с ваучером оплаты.
//
// Порядок проверок до сетевого вызова: занятость процесса, корректность
// ваучера (тип и размер), отсутствие неразрешённой заявки. После успеха
// инвалидируются my-enrollment и check-access, чтобы зависимые представления
// перечитали свежие данные до возврата управления.
func (w *Workflow) Submit(ctx context.Context, planID string, voucher Voucher) (*models.Enrollment, error) {
	const op = "enrollment.Submit"

	if !w.begin() {
		return nil, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	defer w.end()

	if err := w.validate.Struct(submitRequest{PlanID: planID}); err != nil {
		return nil, fmt.Errorf("%s: %w: subscription plan id", op, api.ErrValidation)
	}
	if err := voucher.Validate(); err != nil {
		return nil, err
	}

	current, err := w.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current.IsPending() {
		return nil, fmt.Errorf("%s: %w", op, ErrSubmitPending)
	}

	upload := api.FileUpload{
		Field:       "paymentVoucher",
		Filename:    voucher.Filename,
		ContentType: voucher.ContentType(),
		Data:        voucher.Data,
	}
	enrollment, err := w.api.RequestSubscription(ctx, planID, upload)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateSubscription)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info("subscription request submitted",
		slog.String("enrollment_id", enrollment.ID),
		slog.String("plan_id", planID))

	if err := w.gate.Invalidate(ctx, KeyMyEnrollment, access.KeyCheckAccess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollment, nil
}

// List возвращает административный список записей. Первый вызов включает
// соответствующее чтение в шлюзе.
func (w *Workflow) List(ctx context.Context) ([]models.Enrollment, error) {
	const op = "enrollment.List"
	if err := w.enrollments.SetCondition(ctx, true); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var list []models.Enrollment
	if err := w.enrollments.Get(ctx, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Approve одобряет заявку (администратор). Повторное одобрение уже
// разрешённой заявки отклоняет бэкенд; клиент не применяет его дважды.
func (w *Workflow) Approve(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	const op = "enrollment.Approve"
	return w.resolve(ctx, op, enrollmentID, w.api.ApproveEnrollment)
}

// Reject отклоняет заявку (администратор).
func (w *Workflow) Reject(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	const op = "enrollment.Reject"
	return w.resolve(ctx, op, enrollmentID, w.api.RejectEnrollment)
}

func (w *Workflow) resolve(ctx context.Context, op, enrollmentID string,
	mutate func(context.Context, string) (*models.Enrollment, error)) (*models.Enrollment, error) {

	if !w.begin() {
		return nil, fmt.Errorf("%s: %w", op, ErrBusy)
	}
	defer w.end()

	enrollment, err := mutate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotPending)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.log.Info("enrollment resolved",
		slog.String("enrollment_id", enrollmentID),
		slog.String("status", string(enrollment.Status)))

	// список должен отразить новый статус до закрытия деталей заявки
	if err := w.gate.Invalidate(ctx, KeyEnrollments, access.KeyCheckAccess); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollment, nil
}

func (w *Workflow) begin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return false
	}
	w.busy = true
	return true
}

func (w *Workflow) end() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}
