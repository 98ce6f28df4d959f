package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return New(server.URL, server.Client(), testLogger()), server
}

// TestClient_StatusErrors тестирует отображение кодов ответа бэкенда
// в типизированные ошибки с сохранением сообщения
func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantText string
	}{
		{
			name:     "400 maps to validation error",
			status:   http.StatusBadRequest,
			body:     `{"status":"Error","error":"field email is a required field"}`,
			wantErr:  ErrValidation,
			wantText: "field email is a required field",
		},
		{
			name:    "422 maps to validation error",
			status:  http.StatusUnprocessableEntity,
			body:    `{"status":"Error","error":"field price must be greater than zero"}`,
			wantErr: ErrValidation,
		},
		{
			name:    "401 maps to unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"status":"Error","error":"invalid or expired token"}`,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "403 maps to forbidden",
			status:  http.StatusForbidden,
			body:    `{"status":"Error","error":"forbidden"}`,
			wantErr: ErrForbidden,
		},
		{
			name:    "404 maps to not found",
			status:  http.StatusNotFound,
			body:    `{"status":"Error","error":"subscription plan not found"}`,
			wantErr: ErrNotFound,
		},
		{
			name:     "409 maps to conflict",
			status:   http.StatusConflict,
			body:     `{"status":"Error","error":"active or pending enrollment already exists"}`,
			wantErr:  ErrConflict,
			wantText: "active or pending enrollment already exists",
		},
		{
			name:    "500 maps to server error",
			status:  http.StatusInternalServerError,
			body:    `{"message":"boom"}`,
			wantErr: ErrServer,
		},
		{
			name:    "error without body keeps the sentinel",
			status:  http.StatusConflict,
			body:    "",
			wantErr: ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := client.Plans(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

// TestClient_MyEnrollment тестирует семантику отсутствия записи:
// мягкий 401 и 404 — это nil без ошибки
func TestClient_MyEnrollment(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"status":"Error","error":"no enrollment found"}`))
		}))
		defer server.Close()

		enrollment, err := client.MyEnrollment(context.Background())
		require.NoError(t, err)
		assert.Nil(t, enrollment)
	}
}

// TestClient_CheckAccess тестирует, что мягкий 401 — это false без ошибки
func TestClient_CheckAccess(t *testing.T) {
	t.Run("soft 401 means no access", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"Error","error":"no active subscription"}`))
		}))
		defer server.Close()

		hasAccess, err := client.CheckAccess(context.Background())
		require.NoError(t, err)
		assert.False(t, hasAccess)
	})

	t.Run("200 carries the flag", func(t *testing.T) {
		client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"hasAccess":true}`))
		}))
		defer server.Close()

		hasAccess, err := client.CheckAccess(context.Background())
		require.NoError(t, err)
		assert.True(t, hasAccess)
	})
}

// TestClient_RequestSubscription тестирует состав multipart-запроса заявки:
// id плана и файл ваучера, без каких-либо сумм
func TestClient_RequestSubscription(t *testing.T) {
	var (
		gotPlanID      string
		gotFilename    string
		gotContentType string
		gotFormKeys    []string
	)
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		gotPlanID = r.FormValue("subscriptionPlanId")
		for key := range r.MultipartForm.Value {
			gotFormKeys = append(gotFormKeys, key)
		}
		file, header, err := r.FormFile("paymentVoucher")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"e1","status":"pending_payment"}`))
	}))
	defer server.Close()

	enrollment, err := client.RequestSubscription(context.Background(), "plan-1", FileUpload{
		Field:       "paymentVoucher",
		Filename:    "receipt.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)
	assert.Equal(t, "e1", enrollment.ID)
	assert.Equal(t, "plan-1", gotPlanID)
	assert.Equal(t, "receipt.png", gotFilename)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, []string{"subscriptionPlanId"}, gotFormKeys, "в форме нет сумм и лишних полей")
}

// TestClient_LoginValidatesBeforeNetwork тестирует локальную валидацию:
// негодные данные не доходят до бэкенда
func TestClient_LoginValidatesBeforeNetwork(t *testing.T) {
	var requests int
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := client.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "123456"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = client.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, requests)
}

// TestClient_CatalogNormalizesAccess тестирует выправление инварианта
// isLocked == !hasAccess на стороне клиента
func TestClient_CatalogNormalizesAccess(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":"v1","title":"Open","hasAccess":true,"isLocked":true},
			{"id":"v2","title":"Locked","hasAccess":false,"isLocked":false}
		]`))
	}))
	defer server.Close()

	videos, err := client.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.False(t, videos[0].IsLocked)
	assert.True(t, videos[1].IsLocked)
}
