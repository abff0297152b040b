// Package session содержит unit тесты хранилища сессии.
package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage — хранилище в памяти для тестов Store.
type memStorage struct {
	entries map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{entries: map[string]string{}}
}

func (m *memStorage) Set(key, value string) error {
	m.entries[key] = value
	return nil
}

func (m *memStorage) Get(key string) (string, error) {
	return m.entries[key], nil
}

func (m *memStorage) Delete(key string) error {
	delete(m.entries, key)
	return nil
}

// testUser возвращает пользователя для тестов.
func testUser() *UserInfo {
	return &UserInfo{
		ID:       42,
		Username: "ivanov",
		Nickname: "Иван",
		Role:     RoleUser,
	}
}

// checkInvariant проверяет атомарность сессии: токен и пользователь
// присутствуют только вместе, и в памяти, и в хранилище.
func checkInvariant(t *testing.T, s *Store, storage *memStorage) {
	t.Helper()

	tokenPresent := s.Token() != ""
	userPresent := s.User() != nil
	assert.Equal(t, tokenPresent, userPresent, "токен и пользователь должны присутствовать только вместе")

	storedToken := storage.entries[TokenKey]
	storedUser := storage.entries[UserKey]
	assert.Equal(t, tokenPresent, storedToken != "", "токен в хранилище должен совпадать с памятью")
	assert.Equal(t, userPresent, storedUser != "", "пользователь в хранилище должен совпадать с памятью")
}

// =====================================
// Тесты инварианта сессии
// =====================================

// TestStore_Invariant тестирует инвариант после каждой мутации
// для разных последовательностей вызовов.
func TestStore_Invariant(t *testing.T) {
	tests := []struct {
		name string
		ops  []func(s *Store)
	}{
		{
			name: "вход",
			ops: []func(s *Store){
				func(s *Store) { _ = s.SetSession("token-1", testUser()) },
			},
		},
		{
			name: "вход и выход",
			ops: []func(s *Store){
				func(s *Store) { _ = s.SetSession("token-1", testUser()) },
				func(s *Store) { s.Logout() },
			},
		},
		{
			name: "переиздание токена",
			ops: []func(s *Store){
				func(s *Store) { _ = s.SetSession("token-1", testUser()) },
				func(s *Store) { _ = s.SetToken("token-2") },
			},
		},
		{
			name: "обновление профиля",
			ops: []func(s *Store){
				func(s *Store) { _ = s.SetSession("token-1", testUser()) },
				func(s *Store) { _ = s.SetUser(&UserInfo{ID: 42, Username: "ivanov", Nickname: "Ваня", Role: RoleUser}) },
			},
		},
		{
			name: "очистка токена очищает пользователя",
			ops: []func(s *Store){
				func(s *Store) { _ = s.SetSession("token-1", testUser()) },
				func(s *Store) { _ = s.SetToken("") },
			},
		},
		{
			name: "очистка пользователя очищает токен",
			ops: []func(s *Store){
				func(s *Store) { _ = s.SetSession("token-1", testUser()) },
				func(s *Store) { _ = s.SetUser(nil) },
			},
		},
		{
			name: "токен без сессии отклоняется",
			ops: []func(s *Store){
				func(s *Store) { assert.Error(t, s.SetToken("token-1")) },
			},
		},
		{
			name: "пользователь без сессии отклоняется",
			ops: []func(s *Store){
				func(s *Store) { assert.Error(t, s.SetUser(testUser())) },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			s, err := NewStore(storage)
			require.NoError(t, err)

			for _, op := range tt.ops {
				op(s)
				checkInvariant(t, s, storage)
			}
		})
	}
}

// TestStore_LogoutIdempotent тестирует идемпотентность выхода.
func TestStore_LogoutIdempotent(t *testing.T) {
	storage := newMemStorage()
	s, err := NewStore(storage)
	require.NoError(t, err)

	require.NoError(t, s.SetSession("token-1", testUser()))

	// Первый выход фактически сбрасывает сессию.
	assert.True(t, s.Logout())
	assert.False(t, s.Authenticated())

	// Повторный выход ничего не меняет и сообщает об этом.
	assert.False(t, s.Logout())
	assert.False(t, s.Authenticated())
	checkInvariant(t, s, storage)
}

// TestStore_RoundTrip тестирует восстановление сессии после повторного входа.
func TestStore_RoundTrip(t *testing.T) {
	storage := newMemStorage()
	s, err := NewStore(storage)
	require.NoError(t, err)

	user := testUser()
	require.NoError(t, s.SetSession("token-1", user))
	before := s.User()

	s.Logout()
	require.Nil(t, s.User())

	// Повторный вход с переизданным токеном восстанавливает пользователя.
	require.NoError(t, s.SetSession("token-2", user))
	assert.Equal(t, before, s.User())
	assert.Equal(t, "token-2", s.Token())
}

// TestStore_Role тестирует производную роль.
func TestStore_Role(t *testing.T) {
	storage := newMemStorage()
	s, err := NewStore(storage)
	require.NoError(t, err)

	// Без сессии — наименее привилегированная роль.
	assert.Equal(t, RoleUser, s.Role())

	admin := testUser()
	admin.Role = RoleAdmin
	require.NoError(t, s.SetSession("token-1", admin))
	assert.Equal(t, RoleAdmin, s.Role())

	s.Logout()
	assert.Equal(t, RoleUser, s.Role())
}

// TestStore_UserCopy тестирует защиту внутреннего состояния от изменения извне.
func TestStore_UserCopy(t *testing.T) {
	storage := newMemStorage()
	s, err := NewStore(storage)
	require.NoError(t, err)

	require.NoError(t, s.SetSession("token-1", testUser()))

	u := s.User()
	u.Username = "hacked"

	assert.Equal(t, "ivanov", s.User().Username)
}

// =====================================
// Тесты восстановления при старте
// =====================================

// TestNewStore_Rehydrate тестирует восстановление сессии из хранилища.
func TestNewStore_Rehydrate(t *testing.T) {
	storage := newMemStorage()
	first, err := NewStore(storage)
	require.NoError(t, err)
	require.NoError(t, first.SetSession("token-1", testUser()))

	// Новый Store поверх того же хранилища видит сессию.
	second, err := NewStore(storage)
	require.NoError(t, err)
	assert.True(t, second.Authenticated())
	assert.Equal(t, "token-1", second.Token())
	assert.Equal(t, "ivanov", second.User().Username)
}

// TestNewStore_HalfState тестирует сброс неполной сессии при старте.
func TestNewStore_HalfState(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
	}{
		{
			name:    "токен без пользователя",
			entries: map[string]string{TokenKey: "token-1"},
		},
		{
			name:    "пользователь без токена",
			entries: map[string]string{UserKey: `{"id":42,"username":"ivanov","role":"user"}`},
		},
		{
			name:    "повреждённый пользователь",
			entries: map[string]string{TokenKey: "token-1", UserKey: "не json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newMemStorage()
			for k, v := range tt.entries {
				storage.entries[k] = v
			}

			s, err := NewStore(storage)
			require.NoError(t, err)

			assert.False(t, s.Authenticated())
			assert.Empty(t, storage.entries[TokenKey])
			assert.Empty(t, storage.entries[UserKey])
		})
	}
}

// TestStore_FileBacked тестирует сквозной сценарий с файловым хранилищем.
func TestStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	storage, err := NewFileStorage(path)
	require.NoError(t, err)

	s, err := NewStore(storage)
	require.NoError(t, err)
	require.NoError(t, s.SetSession("token-1", testUser()))

	// Имитируем перезапуск процесса: новое хранилище и новый Store.
	storage2, err := NewFileStorage(path)
	require.NoError(t, err)
	s2, err := NewStore(storage2)
	require.NoError(t, err)

	assert.True(t, s2.Authenticated())
	assert.Equal(t, int64(42), s2.User().ID)
}
