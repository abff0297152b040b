// Package session содержит хранилище текущей сессии клиента:
// токен доступа и данные вошедшего пользователя.
//
// Инвариант хранилища: токен и пользователь присутствуют только вместе.
// Разлогиненное состояние атомарно — не бывает токена без пользователя
// и пользователя без токена. Каждая мутация синхронно сохраняется
// в долговременное хранилище, при старте состояние восстанавливается.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"example.com/campus-market/pkg/logger"
)

// Фиксированные ключи долговременного хранилища.
// Имена ключей входят в контракт: их меняет только миграция данных.
const (
	// TokenKey — ключ токена доступа.
	TokenKey = "campus_swap_token"

	// UserKey — ключ JSON-представления пользователя.
	UserKey = "campus_swap_user"
)

// Role — роль пользователя в системе.
type Role string

const (
	// RoleUser — обычный пользователь (наименее привилегированная роль).
	RoleUser Role = "user"

	// RoleAdmin — администратор консоли модерации.
	RoleAdmin Role = "admin"
)

// UserInfo — данные вошедшего пользователя.
type UserInfo struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Nickname   string `json:"nickname,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Department string `json:"department,omitempty"`
	Role       Role   `json:"role"`
	Avatar     string `json:"avatar,omitempty"`
}

// Store — хранилище текущей сессии.
// Единственный владелец пары {токен, пользователь}; все мутации проходят
// через него и синхронно дублируются в Storage.
type Store struct {
	mu      sync.Mutex
	storage Storage
	token   string
	user    *UserInfo
}

// NewStore создаёт хранилище сессии и восстанавливает состояние из storage.
// Половинчатое состояние на диске (токен без пользователя или наоборот)
// отбрасывается целиком — инвариант важнее сохранённых данных.
func NewStore(storage Storage) (*Store, error) {
	s := &Store{storage: storage}

	token, err := storage.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения токена из хранилища: %w", err)
	}

	userJSON, err := storage.Get(UserKey)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователя из хранилища: %w", err)
	}

	if token == "" || userJSON == "" {
		// Неполная пара — чистим обе записи.
		if token != "" || userJSON != "" {
			logger.Warn().Msg("Неполная сессия в хранилище — сброшена")
			s.clearStorage()
		}
		return s, nil
	}

	var user UserInfo
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		logger.Warn().Err(err).Msg("Повреждённые данные пользователя в хранилище — сессия сброшена")
		s.clearStorage()
		return s, nil
	}

	s.token = token
	s.user = &user
	return s, nil
}

// SetSession атомарно устанавливает токен и пользователя.
// Основной путь входа: вызывается после успешного логина.
func (s *Store) SetSession(token string, user *UserInfo) error {
	if token == "" || user == nil {
		return fmt.Errorf("сессия требует и токен, и пользователя")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(token, user); err != nil {
		return err
	}

	s.token = token
	s.user = cloneUser(user)
	return nil
}

// SetToken заменяет токен текущей сессии (переиздание токена).
// Пустое значение равносильно Logout. Установка токена без активной
// сессии запрещена — это нарушило бы атомарность состояния.
func (s *Store) SetToken(token string) error {
	if token == "" {
		s.Logout()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return fmt.Errorf("нельзя установить токен без активной сессии")
	}

	if err := s.persist(token, s.user); err != nil {
		return err
	}

	s.token = token
	return nil
}

// SetUser обновляет данные пользователя текущей сессии (смена профиля).
// nil равносилен Logout. Обновление пользователя без активной сессии
// запрещено симметрично SetToken.
func (s *Store) SetUser(user *UserInfo) error {
	if user == nil {
		s.Logout()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return fmt.Errorf("нельзя установить пользователя без активной сессии")
	}

	if err := s.persist(s.token, user); err != nil {
		return err
	}

	s.user = cloneUser(user)
	return nil
}

// Logout атомарно сбрасывает токен и пользователя.
// Идемпотентен: повторный вызов ничего не меняет.
// Возвращает true, если сессия действительно была сброшена —
// это позволяет среагировать на истечение сессии ровно один раз
// при нескольких одновременных 401 ответах.
func (s *Store) Logout() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" && s.user == nil {
		return false
	}

	s.token = ""
	s.user = nil
	s.clearStorage()
	return true
}

// Token возвращает текущий токен или пустую строку.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User возвращает копию данных пользователя или nil, если сессии нет.
func (s *Store) User() *UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.user)
}

// Role возвращает роль текущего пользователя.
// Без активной сессии возвращает наименее привилегированную роль —
// читатели роли обязаны переживать разлогиненное состояние.
func (s *Store) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil || s.user.Role == "" {
		return RoleUser
	}
	return s.user.Role
}

// Authenticated возвращает true при активной сессии.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// persist синхронно записывает обе записи сессии в долговременное хранилище.
// Вызывается под мьютексом.
func (s *Store) persist(token string, user *UserInfo) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("ошибка сериализации пользователя: %w", err)
	}

	if err := s.storage.Set(TokenKey, token); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	if err := s.storage.Set(UserKey, string(userJSON)); err != nil {
		return fmt.Errorf("ошибка сохранения пользователя: %w", err)
	}
	return nil
}

// clearStorage удаляет обе записи сессии из долговременного хранилища.
// Ошибки удаления только логируются: сброс сессии в памяти важнее.
func (s *Store) clearStorage() {
	if err := s.storage.Delete(TokenKey); err != nil {
		logger.Error().Err(err).Msg("Ошибка удаления токена из хранилища")
	}
	if err := s.storage.Delete(UserKey); err != nil {
		logger.Error().Err(err).Msg("Ошибка удаления пользователя из хранилища")
	}
}

// cloneUser возвращает копию пользователя, чтобы вызывающий код
// не мог изменить внутреннее состояние хранилища.
func cloneUser(u *UserInfo) *UserInfo {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
