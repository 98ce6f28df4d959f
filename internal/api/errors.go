package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator"
)

// Тип ошибки определяется кодом ответа бэкенда; сообщение бэкенда
// сохраняется в тексте ошибки, при его отсутствии подставляется общее.
var (
	// ErrValidation — запрос отклонён до или во время проверки данных (400/422).
	ErrValidation = errors.New("invalid request data")
	// ErrUnauthorized — бэкенд ответил 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden — бэкенд ответил 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound — бэкенд ответил 404.
	ErrNotFound = errors.New("not found")
	// ErrConflict — бэкенд ответил 409 (например, повторная заявка на подписку).
	ErrConflict = errors.New("conflict")
	// ErrServer — бэкенд ответил 5xx.
	ErrServer = errors.New("server error")
)

// errorEnvelope формат тела ошибки бэкенда. Поле Error использует
// конверт dev-бэкенда, Message — конверт продакшен-бэкенда.
type errorEnvelope struct {
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// statusError превращает неуспешный HTTP-ответ в типизированную ошибку.
func statusError(resp *http.Response) error {
	msg := backendMessage(resp.Body)

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		sentinel = ErrValidation
	case resp.StatusCode == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		sentinel = ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		sentinel = ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		sentinel = ErrConflict
	case resp.StatusCode >= http.StatusInternalServerError:
		sentinel = ErrServer
	default:
		sentinel = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func backendMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}

// validationError формирует ошибку валидации с человеко-читаемым перечнем
// нарушений, объединённым через запятую.
func validationError(errs validator.ValidationErrors) error {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than zero", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(errsMsgs, ", "))
}
