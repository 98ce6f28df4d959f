package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// VideoRequest метаданные видео для создания или обновления.
type VideoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	Duration    int    `json:"duration"`
	IsPublished bool   `json:"isPublished"`
}

// WatchResponse короткоживущая ссылка на воспроизведение видео.
type WatchResponse struct {
	VideoURL    string `json:"videoUrl"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Catalog возвращает каталог видео с аннотациями доступа текущего
// пользователя. Аннотации нормализуются к инварианту isLocked == !hasAccess.
func (c *Client) Catalog(ctx context.Context) ([]models.Video, error) {
	const op = "api.Catalog"
	var videos []models.Video
	if err := c.getJSON(ctx, "/videos/catalog", &videos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range videos {
		videos[i].NormalizeAccess()
	}
	return videos, nil
}

// Videos возвращает все видео (административный список).
func (c *Client) Videos(ctx context.Context) ([]models.Video, error) {
	const op = "api.Videos"
	var videos []models.Video
	if err := c.getJSON(ctx, "/videos", &videos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return videos, nil
}

// Video возвращает видео по идентификатору.
func (c *Client) Video(ctx context.Context, id string) (*models.Video, error) {
	const op = "api.Video"
	var video models.Video
	if err := c.getJSON(ctx, "/videos/"+id, &video); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &video, nil
}

// Watch запрашивает короткоживущую ссылку на воспроизведение.
func (c *Client) Watch(ctx context.Context, id string) (*WatchResponse, error) {
	const op = "api.Watch"
	var resp WatchResponse
	if err := c.getJSON(ctx, "/videos/"+id+"/watch", &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &resp, nil
}

// CreateVideo создает видео, отправляя метаданные, файл видео и превью
// одним multipart-запросом.
func (c *Client) CreateVideo(ctx context.Context, req VideoRequest, video, thumbnail *FileUpload) (*models.Video, error) {
	const op = "api.CreateVideo"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	fields := map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"categoryId":  req.CategoryID,
		"duration":    strconv.Itoa(req.Duration),
		"isPublished": strconv.FormatBool(req.IsPublished),
	}
	var files []FileUpload
	if video != nil {
		files = append(files, *video)
	}
	if thumbnail != nil {
		files = append(files, *thumbnail)
	}
	var created models.Video
	if err := c.postMultipart(ctx, "/videos", fields, files, &created); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// UpdateVideo обновляет метаданные видео.
func (c *Client) UpdateVideo(ctx context.Context, id string, req VideoRequest) (*models.Video, error) {
	const op = "api.UpdateVideo"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err.(validator.ValidationErrors))
	}
	var video models.Video
	if err := c.patchJSON(ctx, "/videos/"+id, req, &video); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &video, nil
}

// DeleteVideo удаляет видео.
func (c *Client) DeleteVideo(ctx context.Context, id string) error {
	const op = "api.DeleteVideo"
	if err := c.deleteJSON(ctx, "/videos/"+id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
