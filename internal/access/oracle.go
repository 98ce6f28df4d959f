// Package access реализует оракул доступа к закрытому контенту.
//
// Оракул никогда не вычисляет право доступа сам и не выводит его из
// локального состояния записи ("status == active" не означает доступ):
// логика истечения и привязки планов к видео живет на бэкенде, поэтому
// единственный источник истины — точка check-access и аннотации каталога.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/video-subscription-client/internal/api"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
	"github.com/magabrotheeeer/video-subscription-client/internal/querygate"
)

// Ключи кеша оракула. Результаты зависят от текущего пользователя,
// при выходе кеш очищается целиком (см. querygate.Run).
const (
	KeyCheckAccess = "check-access"
	KeyCatalog     = "videos-catalog"
)

// SubscribeRoute маршрут страницы подписки, куда ведет отказ плеера.
const SubscribeRoute = "/student/subscription"

// ErrNoAccess возвращается плеером вместо запроса ссылки на воспроизведение,
// когда у пользователя нет права доступа.
var ErrNoAccess = errors.New("no active subscription grants access")

// NoAccessError уточняет ErrNoAccess маршрутом перенаправления на страницу
// подписки (аналог upsell-редиректа).
type NoAccessError struct {
	RedirectTo string
}

func (e *NoAccessError) Error() string {
	return fmt.Sprintf("%s, subscribe at %s", ErrNoAccess.Error(), e.RedirectTo)
}

// Is позволяет errors.Is(err, ErrNoAccess).
func (e *NoAccessError) Is(target error) bool { return target == ErrNoAccess }

// Oracle отвечает на вопрос "может ли пользователь смотреть закрытый контент
// сейчас", опираясь только на ответы бэкенда.
type Oracle struct {
	api     *api.Client
	qAccess *querygate.Query
	qVideos *querygate.Query
	log     *slog.Logger
}

// New создает оракул и регистрирует его чтения в шлюзе запросов:
// без токена ни одно из них не выполняется.
func New(apiClient *api.Client, gate *querygate.Gate, log *slog.Logger) (*Oracle, error) {
	const op = "access.New"

	qAccess, err := gate.Register(KeyCheckAccess, func(ctx context.Context) (any, error) {
		// мягкий 401 уже превращен клиентом в hasAccess=false
		hasAccess, err := apiClient.CheckAccess(ctx)
		if err != nil {
			return nil, err
		}
		return api.CheckAccessResponse{HasAccess: hasAccess}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	qVideos, err := gate.Register(KeyCatalog, func(ctx context.Context) (any, error) {
		return apiClient.Catalog(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Oracle{api: apiClient, qAccess: qAccess, qVideos: qVideos, log: log}, nil
}

// CheckAccess возвращает грубый признак "есть право на закрытый контент".
// Отсутствие права — валидный результат, а не ошибка.
func (o *Oracle) CheckAccess(ctx context.Context) (bool, error) {
	const op = "access.CheckAccess"
	var resp api.CheckAccessResponse
	if err := o.qAccess.Get(ctx, &resp); err != nil {
		if errors.Is(err, querygate.ErrDisabled) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return resp.HasAccess, nil
}

// Catalog возвращает каталог с аннотациями доступа текущего пользователя.
func (o *Oracle) Catalog(ctx context.Context) ([]models.Video, error) {
	const op = "access.Catalog"
	var videos []models.Video
	if err := o.qVideos.Get(ctx, &videos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return videos, nil
}

// Watch возвращает ссылку на воспроизведение видео. Плеер не запрашивает
// ссылку без подтвержденного права: вместо этого возвращается ErrNoAccess
// с маршрутом страницы подписки.
func (o *Oracle) Watch(ctx context.Context, videoID string) (*api.WatchResponse, error) {
	const op = "access.Watch"
	hasAccess, err := o.CheckAccess(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !hasAccess {
		return nil, &NoAccessError{RedirectTo: SubscribeRoute}
	}
	resp, err := o.api.Watch(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}
