package enrollment

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/video-subscription-client/internal/api"
	"github.com/magabrotheeeer/video-subscription-client/internal/cache"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
	"github.com/magabrotheeeer/video-subscription-client/internal/querygate"
)

const (
	waitTimeout  = 2 * time.Second
	pollInterval = 5 * time.Millisecond
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSession — всегда аутентифицированная сессия для шлюза чтений
type fakeSession struct{}

func (fakeSession) IsAuthenticated() bool      { return true }
func (fakeSession) Subscribe() <-chan struct{} { return make(chan struct{}) }

// fakeBackend — управляемый бэкенд жизненного цикла заявки
type fakeBackend struct {
	mu      sync.Mutex
	current *models.Enrollment
	list    []models.Enrollment

	submitStatus  int // 0 — принять заявку
	resolveStatus int // 0 — выполнить переход

	submits  atomic.Int32
	myReads  atomic.Int32
	blockOne chan struct{} // если задан, первый submit ждет сигнала
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /enrollments/my-enrollment", func(w http.ResponseWriter, _ *http.Request) {
		b.myReads.Add(1)
		b.mu.Lock()
		current := b.current
		b.mu.Unlock()
		if current == nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"Error","error":"no enrollment found"}`))
			return
		}
		writeJSON(t, w, current)
	})
	mux.HandleFunc("POST /enrollments/request-subscription", func(w http.ResponseWriter, r *http.Request) {
		if n := b.submits.Add(1); n == 1 && b.blockOne != nil {
			<-b.blockOne
		}
		if b.submitStatus != 0 {
			w.WriteHeader(b.submitStatus)
			_, _ = w.Write([]byte(`{"status":"Error","error":"active or pending enrollment already exists"}`))
			return
		}
		require.NoError(t, r.ParseMultipartForm(10<<20))
		created := &models.Enrollment{
			ID:                 uuid.NewString(),
			SubscriptionPlanID: r.FormValue("subscriptionPlanId"),
			Status:             models.StatusPendingPayment,
			PaymentStatus:      models.PaymentPending,
		}
		b.mu.Lock()
		b.current = created
		b.list = []models.Enrollment{*created}
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, created)
	})
	mux.HandleFunc("GET /enrollments", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		list := b.list
		b.mu.Unlock()
		writeJSON(t, w, list)
	})
	mux.HandleFunc("PATCH /enrollments/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		b.resolve(t, w, r.PathValue("id"), models.StatusActive)
	})
	mux.HandleFunc("PATCH /enrollments/{id}/reject", func(w http.ResponseWriter, r *http.Request) {
		b.resolve(t, w, r.PathValue("id"), models.StatusInactive)
	})
	return mux
}

func (b *fakeBackend) resolve(t *testing.T, w http.ResponseWriter, id string, status models.EnrollmentStatus) {
	if b.resolveStatus != 0 {
		w.WriteHeader(b.resolveStatus)
		_, _ = w.Write([]byte(`{"status":"Error","error":"enrollment is not awaiting approval"}`))
		return
	}
	b.mu.Lock()
	for i := range b.list {
		if b.list[i].ID == id {
			b.list[i].Status = status
		}
	}
	if b.current != nil && b.current.ID == id {
		b.current.Status = status
	}
	resolved := models.Enrollment{ID: id, Status: status}
	b.mu.Unlock()
	writeJSON(t, w, resolved)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newWorkflow(t *testing.T, backend *fakeBackend) *Workflow {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	apiClient := api.New(server.URL, server.Client(), testLogger())
	gate := querygate.New(fakeSession{}, cache.NewMemory(), 0, testLogger())
	w, err := New(apiClient, gate, testLogger())
	require.NoError(t, err)
	return w
}

func validVoucher() Voucher {
	return Voucher{Filename: "receipt.png", Data: pngBytes(256)}
}

// TestWorkflow_Submit тестирует подачу заявки и инвалидацию зависимых чтений
func TestWorkflow_Submit(t *testing.T) {
	backend := &fakeBackend{}
	w := newWorkflow(t, backend)
	ctx := context.Background()

	state, err := w.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateNone, state)

	planID := uuid.NewString()
	enrollment, err := w.Submit(ctx, planID, validVoucher())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, enrollment.Status)
	assert.Equal(t, planID, enrollment.SubscriptionPlanID)

	// инвалидация после мутации: текущая запись перечитана без ручного повтора
	current, err := w.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, models.StatusPendingPayment, current.Status)

	state, err = w.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatePendingPayment, state)
}

// TestWorkflow_SubmitWhilePending тестирует локальный запрет повторной подачи:
// при неразрешённой заявке сетевой вызов не выполняется
func TestWorkflow_SubmitWhilePending(t *testing.T) {
	backend := &fakeBackend{current: &models.Enrollment{
		ID:     uuid.NewString(),
		Status: models.StatusPendingPayment,
	}}
	w := newWorkflow(t, backend)

	_, err := w.Submit(context.Background(), uuid.NewString(), validVoucher())
	assert.ErrorIs(t, err, ErrSubmitPending)
	assert.Zero(t, backend.submits.Load())
}

// TestWorkflow_SubmitConflict тестирует отличимую ошибку дубля:
// 409 бэкенда — это не общий отказ, а "подписка или заявка уже есть"
func TestWorkflow_SubmitConflict(t *testing.T) {
	backend := &fakeBackend{submitStatus: http.StatusConflict}
	w := newWorkflow(t, backend)

	_, err := w.Submit(context.Background(), uuid.NewString(), validVoucher())
	assert.ErrorIs(t, err, ErrDuplicateSubscription)
	assert.NotErrorIs(t, err, api.ErrConflict, "низкоуровневый конфликт не протекает наружу")
}

// TestWorkflow_SubmitValidation тестирует проверки до сетевого вызова
func TestWorkflow_SubmitValidation(t *testing.T) {
	backend := &fakeBackend{}
	w := newWorkflow(t, backend)
	ctx := context.Background()

	t.Run("plan id must be uuid", func(t *testing.T) {
		_, err := w.Submit(ctx, "not-a-uuid", validVoucher())
		assert.ErrorIs(t, err, api.ErrValidation)
	})

	t.Run("voucher must be an allowed image", func(t *testing.T) {
		_, err := w.Submit(ctx, uuid.NewString(), Voucher{Filename: "receipt.txt", Data: []byte("text")})
		assert.ErrorIs(t, err, ErrVoucherType)
	})

	t.Run("voucher must not be empty", func(t *testing.T) {
		_, err := w.Submit(ctx, uuid.NewString(), Voucher{Filename: "receipt.png"})
		assert.ErrorIs(t, err, ErrVoucherEmpty)
	})

	assert.Zero(t, backend.submits.Load())
}

// TestWorkflow_SubmitBusy тестирует защиту от параллельных мутаций:
// вторая операция получает ErrBusy, пока первая не завершилась
func TestWorkflow_SubmitBusy(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{blockOne: release}
	w := newWorkflow(t, backend)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := w.Submit(ctx, uuid.NewString(), validVoucher())
		firstDone <- err
	}()

	// дождаться, пока первая мутация займет процесс
	assert.Eventually(t, func() bool { return backend.submits.Load() == 1 },
		waitTimeout, pollInterval)

	_, err := w.Submit(ctx, uuid.NewString(), validVoucher())
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-firstDone)

	// после завершения процесс снова свободен
	_, err = w.Approve(ctx, uuid.NewString())
	assert.NotErrorIs(t, err, ErrBusy)
}

// TestWorkflow_ApproveRefreshesList тестирует порядок "инвалидация до
// возврата": список отражает новый статус сразу после одобрения
func TestWorkflow_ApproveRefreshesList(t *testing.T) {
	pending := models.Enrollment{ID: uuid.NewString(), Status: models.StatusPendingPayment}
	backend := &fakeBackend{list: []models.Enrollment{pending}}
	w := newWorkflow(t, backend)
	ctx := context.Background()

	list, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusPendingPayment, list[0].Status)

	resolved, err := w.Approve(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, resolved.Status)

	list, err = w.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusActive, list[0].Status)
}

// TestWorkflow_RejectRefreshesList тестирует переход отклонения
func TestWorkflow_RejectRefreshesList(t *testing.T) {
	pending := models.Enrollment{ID: uuid.NewString(), Status: models.StatusPendingPayment}
	backend := &fakeBackend{list: []models.Enrollment{pending}}
	w := newWorkflow(t, backend)
	ctx := context.Background()

	resolved, err := w.Reject(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, resolved.Status)

	list, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusInactive, list[0].Status)
}

// TestWorkflow_ResolveConflict тестирует повторное решение по заявке:
// бэкенд отвечает 409, клиент переводит его в ErrNotPending
func TestWorkflow_ResolveConflict(t *testing.T) {
	backend := &fakeBackend{resolveStatus: http.StatusConflict}
	w := newWorkflow(t, backend)

	_, err := w.Approve(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotPending)
}
