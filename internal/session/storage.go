// Package session реализует хранилище сессии клиента: текущего пользователя
// и bearer-токена. Хранилище — единственный источник истины о том, кто
// авторизован и с какой ролью.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// Storage описывает долговременное хранение сессии между запусками клиента
// (аналог localStorage браузера с фиксированными ключами).
type Storage interface {
	// Save сохраняет пару пользователь+токен атомарно.
	Save(user *models.User, token string) error
	// Load возвращает сохранённую пару либо (nil, "", nil), если сессии нет.
	Load() (*models.User, string, error)
	// Clear удаляет сохранённую сессию.
	Clear() error
}

// persistedSession формат файла сессии. Ключи фиксированы и совпадают
// с ключами, под которыми браузерный клиент держал сессию.
type persistedSession struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// FileStorage хранит сессию в JSON-файле по заданному пути.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage создает файловое хранилище сессии.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Save пишет сессию во временный файл и атомарно переименовывает его,
// чтобы частично записанная сессия не была видна при падении процесса.
func (f *FileStorage) Save(user *models.User, token string) error {
	const op = "session.FileStorage.Save"
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(persistedSession{AccessToken: token, User: user})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает сессию из файла. Отсутствие файла — не ошибка.
func (f *FileStorage) Load() (*models.User, string, error) {
	const op = "session.FileStorage.Load"
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	var p persistedSession
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if p.AccessToken == "" || p.User == nil {
		// неполная пара недействительна, считаем сессию отсутствующей
		return nil, "", nil
	}
	return p.User, p.AccessToken, nil
}

// Clear удаляет файл сессии.
func (f *FileStorage) Clear() error {
	const op = "session.FileStorage.Clear"
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DefaultSessionPath возвращает путь файла сессии в каталоге конфигурации
// пользователя.
func DefaultSessionPath() (string, error) {
	const op = "session.DefaultSessionPath"
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return filepath.Join(dir, "video-subscription-client", "session.json"), nil
}

// MemoryStorage хранит сессию только в памяти процесса. Используется в тестах
// и в сценариях, где долговременное хранение не нужно.
type MemoryStorage struct {
	mu    sync.Mutex
	user  *models.User
	token string
}

// NewMemoryStorage создает хранилище сессии в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Save сохраняет пару пользователь+токен.
func (m *MemoryStorage) Save(user *models.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.user, m.token = &u, token
	return nil
}

// Load возвращает сохранённую пару.
func (m *MemoryStorage) Load() (*models.User, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil || m.token == "" {
		return nil, "", nil
	}
	u := *m.user
	return &u, m.token, nil
}

// Clear удаляет сохранённую пару.
func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user, m.token = nil, ""
	return nil
}
