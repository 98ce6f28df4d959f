// Package cache реализует общий кеш результатов запросов, разделяемый всеми
// компонентами клиента. Все чтения идут через один кеш, поэтому инвалидация
// после любой мутации видна каждому потребителю — у компонентов нет
// собственных устаревших копий.
package cache

import (
	"context"
	"time"
)

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
	// Clear удаляет все значения кеша. Вызывается при выходе пользователя,
	// чтобы данные прежней личности не утекли в следующую сессию.
	Clear(ctx context.Context) error
}
