// Package api реализует REST-клиент видеоплатформы: аутентификацию, планы
// подписки, записи на планы (включая отправку ваучера multipart-запросом),
// каталог видео и административные операции.
//
// Клиент не занимается подстановкой токена и обработкой 401 — это забота
// шлюза (пакет gateway), через транспорт которого отправляются все запросы.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/go-playground/validator"
)

// Client клиент REST API платформы.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	log      *slog.Logger
}

// FileUpload файл, отправляемый multipart-запросом (ваучер, видео, превью).
type FileUpload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// New создает клиент API. httpClient обычно получен из gateway.Client(),
// чтобы каждый запрос проходил подстановку токена и классификацию 401.
func New(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     httpClient,
		validate: validator.New(),
		log:      log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	const op = "api.do"

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, body, "application/json", out)
}

func (c *Client) patchJSON(ctx context.Context, path string, in, out any) error {
	body, err := encodeJSON(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, path, body, "application/json", out)
}

func (c *Client) deleteJSON(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

func encodeJSON(in any) (io.Reader, error) {
	const op = "api.encodeJSON"
	if in == nil {
		return nil, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bytes.NewReader(data), nil
}

// postMultipart отправляет поля формы и файлы одним multipart-запросом.
func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, files []FileUpload, out any) error {
	const op = "api.postMultipart"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for _, file := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.Filename))
		header.Set("Content-Type", file.ContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, writer.FormDataContentType(), out)
}
