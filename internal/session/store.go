package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// ErrIncompleteAuth возвращается при попытке установить сессию без токена
// или без пользователя: пара меняется только целиком.
var ErrIncompleteAuth = errors.New("session: user and token must be set together")

// Store хранит текущую сессию и гарантирует атомарность переходов:
// IsAuthenticated истинно тогда и только тогда, когда установлены и токен,
// и пользователь. Промежуточное состояние "токен без пользователя" не
// наблюдаемо ни из одного метода.
//
// Store внедряется явно (без синглтона пакета), поэтому тесты могут
// создавать изолированные сессии параллельно.
type Store struct {
	mu      sync.RWMutex
	user    *models.User
	token   string
	storage Storage
	subs    []chan struct{}
	log     *slog.Logger
}

// New создает Store и восстанавливает сессию из долговременного хранилища,
// чтобы перезапуск клиента не требовал повторного входа.
func New(storage Storage, log *slog.Logger) (*Store, error) {
	const op = "session.New"
	user, token, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s := &Store{
		user:    user,
		token:   token,
		storage: storage,
		log:     log,
	}
	if user != nil {
		log.Info("session restored", slog.String("email", user.Email), slog.String("role", string(user.Role)))
	}
	return s, nil
}

// SetAuth атомарно устанавливает пользователя и токен и сохраняет пару
// в долговременное хранилище.
func (s *Store) SetAuth(user models.User, token string) error {
	const op = "session.SetAuth"
	if token == "" || user.ID == "" {
		return fmt.Errorf("%s: %w", op, ErrIncompleteAuth)
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()

	if err := s.storage.Save(&user, token); err != nil {
		s.log.Error("failed to persist session", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.notify()
	return nil
}

// Logout атомарно очищает пользователя и токен и удаляет сохранённую сессию.
// Очистка кеша запросов прежней личности выполняется подписчиками
// (см. querygate.Gate), которым рассылается сигнал перехода.
func (s *Store) Logout() error {
	const op = "session.Logout"
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.Clear(); err != nil {
		s.log.Error("failed to clear persisted session", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.notify()
	return nil
}

// Token возвращает текущий bearer-токен или пустую строку.
// Читается заново при каждой отправке запроса, а не захватывается однажды.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User возвращает копию текущего пользователя или nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated истинно, когда установлены и токен, и пользователь.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// IsAdmin сообщает, имеет ли текущий пользователь роль администратора.
func (s *Store) IsAdmin() bool {
	u := s.User()
	return u != nil && u.Role == models.RoleAdmin
}

// IsStudent сообщает, имеет ли текущий пользователь роль студента.
func (s *Store) IsStudent() bool {
	u := s.User()
	return u != nil && u.Role == models.RoleStudent
}

// Subscribe возвращает канал, в который приходит сигнал после каждого
// перехода SetAuth/Logout. Канал буферизован, отправка неблокирующая.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
