// Package testutil содержит вспомогательные средства для тестов сервисов:
// хранилище сессии в памяти и поддельный сервер маркетплейса,
// отвечающий конвертом {code, message, data}.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"example.com/campus-market/api"
	"example.com/campus-market/session"
)

// MemStorage — хранилище сессии в памяти.
type MemStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemStorage создаёт пустое хранилище.
func NewMemStorage() *MemStorage {
	return &MemStorage{entries: map[string]string{}}
}

// Set записывает значение под ключом.
func (m *MemStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Get возвращает значение под ключом или пустую строку.
func (m *MemStorage) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

// Delete удаляет запись под ключом.
func (m *MemStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// NewSessionStore создаёт хранилище сессии с вошедшим пользователем.
// user == nil — разлогиненное состояние.
func NewSessionStore(t *testing.T, user *session.UserInfo) *session.Store {
	t.Helper()

	store, err := session.NewStore(NewMemStorage())
	require.NoError(t, err)

	if user != nil {
		require.NoError(t, store.SetSession("test-token", user))
	}
	return store
}

// Buyer возвращает пользователя-покупателя для тестов.
func Buyer() *session.UserInfo {
	return &session.UserInfo{ID: 10, Username: "buyer", Role: session.RoleUser}
}

// Seller возвращает пользователя-продавца для тестов.
func Seller() *session.UserInfo {
	return &session.UserInfo{ID: 20, Username: "seller", Role: session.RoleUser}
}

// Admin возвращает администратора для тестов.
func Admin() *session.UserInfo {
	return &session.UserInfo{ID: 1, Username: "admin", Role: session.RoleAdmin}
}

// Server — поддельный сервер маркетплейса на gin.
// Каждый маршрут отвечает конвертом; счётчик запросов позволяет
// проверить, что локально отклонённые операции не ходят в сеть.
type Server struct {
	Router *gin.Engine

	mu       sync.Mutex
	requests int32
}

// NewServer создаёт поддельный сервер и шлюз поверх него.
func NewServer(t *testing.T, store *session.Store) (*Server, *api.Client) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	fake := &Server{Router: gin.New()}
	fake.Router.Use(func(c *gin.Context) {
		fake.mu.Lock()
		fake.requests++
		fake.mu.Unlock()
	})

	httpServer := httptest.NewServer(fake.Router)
	t.Cleanup(httpServer.Close)

	client, err := api.NewClient(api.Config{
		BaseURL:  httpServer.URL,
		Session:  store,
		Notifier: func(string) {},
	})
	require.NoError(t, err)

	return fake, client
}

// RequestCount возвращает количество дошедших до сервера запросов.
func (s *Server) RequestCount() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// RespondData регистрирует маршрут с успешным конвертом и данными.
func (s *Server) RespondData(method, path string, data any) {
	s.Router.Handle(method, path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 200, "message": "success", "data": data})
	})
}

// RespondOK регистрирует маршрут с пустым успешным конвертом.
// Использует нулевой код успеха — вторую конвенцию сервера.
func (s *Server) RespondOK(method, path string) {
	s.Router.Handle(method, path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "ok"})
	})
}

// RespondError регистрирует маршрут с прикладной ошибкой конверта.
func (s *Server) RespondError(method, path string, code int, message string) {
	s.Router.Handle(method, path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": code, "message": message})
	})
}
