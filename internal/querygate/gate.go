// Package querygate реализует шлюз чтений с предусловием аутентификации.
//
// Любое чтение регистрируется с уникальным ключом кеша и функцией загрузки.
// Загрузка не выполняется ни разу, пока нет токена (или пока явное условие
// ложно): это убирает гарантированный 401 при старте, пока сессия еще
// восстанавливается из хранилища. Как только условие становится истинным,
// отложенные загрузки запускаются автоматически, без ручного повтора.
//
// Все результаты идут через общий кеш (см. пакет cache), поэтому инвалидация
// после мутации видна каждому потребителю.
package querygate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/video-subscription-client/internal/cache"
	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
)

var (
	// ErrDisabled возвращается при чтении запроса, чье условие не выполнено.
	ErrDisabled = errors.New("querygate: query is disabled")
	// ErrDuplicateKey возвращается при повторной регистрации ключа.
	ErrDuplicateKey = errors.New("querygate: duplicate query key")
)

// Session описывает часть хранилища сессии, нужную шлюзу чтений.
type Session interface {
	IsAuthenticated() bool
	Subscribe() <-chan struct{}
}

// FetchFunc загружает данные запроса.
type FetchFunc func(ctx context.Context) (any, error)

// Query зарегистрированное чтение с ключом кеша и условием выполнения.
type Query struct {
	key       string
	fetch     FetchFunc
	condition *bool // nil — дополнительного условия нет
	fetched   bool
	gate      *Gate
}

// Gate хранит зарегистрированные запросы и общий кеш результатов.
type Gate struct {
	mu      sync.Mutex
	session Session
	cache   cache.Cache
	ttl     time.Duration
	queries map[string]*Query
	log     *slog.Logger
}

// New создает шлюз чтений поверх сессии и общего кеша.
// ttl — время жизни кешированных результатов, ноль означает "без истечения".
func New(session Session, c cache.Cache, ttl time.Duration, log *slog.Logger) *Gate {
	return &Gate{
		session: session,
		cache:   c,
		ttl:     ttl,
		queries: make(map[string]*Query),
		log:     log,
	}
}

// Run следит за переходами сессии до отмены контекста: вход запускает
// отложенные запросы, выход очищает кеш прежней личности.
func (g *Gate) Run(ctx context.Context) {
	const op = "querygate.Run"
	signal := g.session.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-signal:
			if g.session.IsAuthenticated() {
				g.runPending(ctx)
				continue
			}
			if err := g.cache.Clear(ctx); err != nil {
				g.log.Error("failed to clear cache on logout",
					slog.String("op", op), sl.Err(err))
			}
			g.resetFetched()
		}
	}
}

// Register регистрирует чтение без дополнительного условия.
func (g *Gate) Register(key string, fetch FetchFunc) (*Query, error) {
	return g.register(key, fetch, nil)
}

// RegisterWithCondition регистрирует чтение с явным дополнительным условием
// (например, "только если известен id"). Явное false никогда не ослабляется
// до true самим шлюзом.
func (g *Gate) RegisterWithCondition(key string, fetch FetchFunc, condition bool) (*Query, error) {
	return g.register(key, fetch, &condition)
}

func (g *Gate) register(key string, fetch FetchFunc, condition *bool) (*Query, error) {
	const op = "querygate.Register"
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.queries[key]; exists {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrDuplicateKey, key)
	}
	q := &Query{key: key, fetch: fetch, condition: condition, gate: g}
	g.queries[key] = q
	return q, nil
}

// Invalidate удаляет ключи из общего кеша и сразу перезагружает
// зарегистрированные под ними активные запросы, чтобы следующее чтение
// увидело свежие данные без ручного повтора.
func (g *Gate) Invalidate(ctx context.Context, keys ...string) error {
	const op = "querygate.Invalidate"
	if err := g.cache.Invalidate(ctx, keys...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g.mu.Lock()
	var refetch []*Query
	for _, key := range keys {
		if q, ok := g.queries[key]; ok {
			q.fetched = false
			if q.enabledLocked() {
				refetch = append(refetch, q)
			}
		}
	}
	g.mu.Unlock()

	for _, q := range refetch {
		if err := q.run(ctx); err != nil {
			g.log.Error("failed to refetch after invalidation",
				slog.String("key", q.key), sl.Err(err))
		}
	}
	return nil
}

// runPending выполняет все включенные запросы, которые еще ни разу
// не загружались. Каждый запускается ровно один раз на переход.
func (g *Gate) runPending(ctx context.Context) {
	g.mu.Lock()
	var pending []*Query
	for _, q := range g.queries {
		if !q.fetched && q.enabledLocked() {
			pending = append(pending, q)
		}
	}
	g.mu.Unlock()

	for _, q := range pending {
		if err := q.run(ctx); err != nil {
			g.log.Error("failed to run pending query",
				slog.String("key", q.key), sl.Err(err))
		}
	}
}

func (g *Gate) resetFetched() {
	g.mu.Lock()
	for _, q := range g.queries {
		q.fetched = false
	}
	g.mu.Unlock()
}

// Key возвращает ключ кеша запроса.
func (q *Query) Key() string { return q.key }

// Enabled сообщает, выполнено ли предусловие запроса:
// токен присутствует и явное условие (если задано) истинно.
func (q *Query) Enabled() bool {
	q.gate.mu.Lock()
	defer q.gate.mu.Unlock()
	return q.enabledLocked()
}

func (q *Query) enabledLocked() bool {
	if !q.gate.session.IsAuthenticated() {
		return false
	}
	if q.condition != nil && !*q.condition {
		return false
	}
	return true
}

// SetCondition меняет явное условие запроса. Переход в истину немедленно
// запускает загрузку, если она еще не выполнялась.
func (q *Query) SetCondition(ctx context.Context, v bool) error {
	q.gate.mu.Lock()
	q.condition = &v
	shouldRun := !q.fetched && q.enabledLocked()
	q.gate.mu.Unlock()

	if shouldRun {
		return q.run(ctx)
	}
	return nil
}

// Get возвращает результат запроса: из кеша, либо загрузив его.
// Для выключенного запроса возвращается ErrDisabled — загрузка не
// выполняется ни разу.
func (q *Query) Get(ctx context.Context, dest any) error {
	const op = "querygate.Get"
	if !q.Enabled() {
		return fmt.Errorf("%s: %w: %s", op, ErrDisabled, q.key)
	}

	found, err := q.gate.cache.Get(ctx, q.key, dest)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if found {
		return nil
	}

	if err := q.run(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := q.gate.cache.Get(ctx, q.key, dest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// run загружает данные и кладет их в общий кеш.
func (q *Query) run(ctx context.Context) error {
	const op = "querygate.run"
	result, err := q.fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, q.key, err)
	}
	if err := q.gate.cache.Set(ctx, q.key, result, q.gate.ttl); err != nil {
		return fmt.Errorf("%s: %s: %w", op, q.key, err)
	}
	q.gate.mu.Lock()
	q.fetched = true
	q.gate.mu.Unlock()
	return nil
}
