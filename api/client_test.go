// Package api содержит unit тесты шлюза исходящих запросов.
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/campus-market/apierr"
	"example.com/campus-market/session"
)

// memStorage — хранилище сессии в памяти для тестов.
type memStorage struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{entries: map[string]string{}}
}

func (m *memStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memStorage) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key], nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// notifications — потокобезопасный сборщик уведомлений.
type notifications struct {
	mu       sync.Mutex
	messages []string
}

func (n *notifications) add(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *notifications) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// newAuthenticatedStore возвращает хранилище с активной сессией.
func newAuthenticatedStore(t *testing.T) *session.Store {
	t.Helper()

	store, err := session.NewStore(newMemStorage())
	require.NoError(t, err)
	require.NoError(t, store.SetSession("test-token", &session.UserInfo{
		ID:       42,
		Username: "ivanov",
		Role:     session.RoleUser,
	}))
	return store
}

// newTestClient создаёт шлюз поверх тестового сервера.
func newTestClient(t *testing.T, handler http.Handler, store *session.Store, notifier Notifier, onExpired func()) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:          server.URL,
		Session:          store,
		Notifier:         notifier,
		OnSessionExpired: onExpired,
	})
	require.NoError(t, err)
	return client
}

// envelopeHandler возвращает gin-роутер, отвечающий заданным конвертом.
func envelopeHandler(status int, envelope gin.H) http.Handler {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Any("/*path", func(c *gin.Context) {
		c.JSON(status, envelope)
	})
	return router
}

// =====================================
// Тесты распаковки конверта
// =====================================

// TestClient_UnwrapSuccess тестирует оба кода успеха конверта.
// Двойная конвенция сервера (0 и 200) — закреплённое поведение.
func TestClient_UnwrapSuccess(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{name: "код успеха 200", code: 200},
		{name: "код успеха 0", code: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newAuthenticatedStore(t)
			client := newTestClient(t, envelopeHandler(http.StatusOK, gin.H{
				"code": tt.code,
				"data": gin.H{"id": 7, "orderNo": "ORD7"},
			}), store, nil, nil)

			var out struct {
				ID      int64  `json:"id"`
				OrderNo string `json:"orderNo"`
			}
			err := client.Get(context.Background(), "/api/order/7", nil, &out)

			require.NoError(t, err)
			assert.Equal(t, int64(7), out.ID)
			assert.Equal(t, "ORD7", out.OrderNo)
		})
	}
}

// TestClient_NilOut тестирует вызов без интереса к полезной нагрузке.
func TestClient_NilOut(t *testing.T) {
	store := newAuthenticatedStore(t)
	client := newTestClient(t, envelopeHandler(http.StatusOK, gin.H{
		"code": 200,
		"data": nil,
	}), store, nil, nil)

	err := client.Put(context.Background(), "/api/order/7/confirm", nil, nil)
	assert.NoError(t, err)
}

// TestClient_ApplicationError тестирует прикладную ошибку конверта.
func TestClient_ApplicationError(t *testing.T) {
	store := newAuthenticatedStore(t)
	notes := &notifications{}
	client := newTestClient(t, envelopeHandler(http.StatusOK, gin.H{
		"code":    500,
		"message": "商品不在销售中",
	}), store, notes.add, nil)

	err := client.Post(context.Background(), "/api/order", gin.H{}, nil)

	require.Error(t, err)
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Code)
	assert.Equal(t, "商品不在销售中", apiErr.Message)

	// Сообщение сервера показано пользователю, сессия не тронута.
	assert.Equal(t, []string{"商品不在销售中"}, notes.all())
	assert.True(t, store.Authenticated())
}

// =====================================
// Тесты истечения сессии
// =====================================

// TestClient_SessionExpired тестирует оба способа сигнализации 401.
func TestClient_SessionExpired(t *testing.T) {
	tests := []struct {
		name    string
		handler http.Handler
	}{
		{
			name:    "401 в конверте",
			handler: envelopeHandler(http.StatusOK, gin.H{"code": 401, "message": "token expired"}),
		},
		{
			name:    "транспортный 401",
			handler: envelopeHandler(http.StatusUnauthorized, gin.H{"code": 401}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newAuthenticatedStore(t)
			notes := &notifications{}
			var navigations int32
			client := newTestClient(t, tt.handler, store, notes.add, func() {
				atomic.AddInt32(&navigations, 1)
			})

			err := client.Get(context.Background(), "/api/user/info", nil, nil)

			require.Error(t, err)
			assert.True(t, apierr.IsKind(err, apierr.KindAuthentication))

			// Сессия полностью сброшена, навигация сработала один раз.
			assert.False(t, store.Authenticated())
			assert.Empty(t, store.Token())
			assert.Nil(t, store.User())
			assert.Equal(t, int32(1), atomic.LoadInt32(&navigations))
			assert.Equal(t, []string{"сессия истекла, войдите заново"}, notes.all())
		})
	}
}

// TestClient_ConcurrentUnauthorized тестирует идемпотентность сброса сессии:
// два одновременных запроса получают 401, но навигация происходит ровно один раз.
func TestClient_ConcurrentUnauthorized(t *testing.T) {
	store := newAuthenticatedStore(t)

	// Сервер отвечает 401 обоим запросам только после того,
	// как оба дошли — гарантированная одновременность.
	gin.SetMode(gin.TestMode)
	router := gin.New()
	arrived := make(chan struct{}, 2)
	proceed := make(chan struct{})
	router.Any("/*path", func(c *gin.Context) {
		arrived <- struct{}{}
		<-proceed
		c.JSON(http.StatusOK, gin.H{"code": 401})
	})

	var navigations int32
	client := newTestClient(t, router, store, func(string) {}, func() {
		atomic.AddInt32(&navigations, 1)
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Get(context.Background(), "/api/order/list", nil, nil)
		}(i)
	}

	<-arrived
	<-arrived
	close(proceed)
	wg.Wait()

	for _, err := range errs {
		assert.True(t, apierr.IsKind(err, apierr.KindAuthentication))
	}
	assert.False(t, store.Authenticated())
	assert.Equal(t, int32(1), atomic.LoadInt32(&navigations), "навигация должна сработать ровно один раз")
}

// =====================================
// Тесты транспортных ошибок
// =====================================

// TestClient_Timeout тестирует потолок времени запроса.
func TestClient_Timeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Any("/*path", func(c *gin.Context) {
		time.Sleep(200 * time.Millisecond)
		c.JSON(http.StatusOK, gin.H{"code": 200})
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	store := newAuthenticatedStore(t)
	notes := &notifications{}
	client, err := NewClient(Config{
		BaseURL:    server.URL,
		Session:    store,
		Notifier:   notes.add,
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})
	require.NoError(t, err)

	err = client.Get(context.Background(), "/api/product/list", nil, nil)

	require.Error(t, err)
	assert.True(t, apierr.IsKind(err, apierr.KindTransport))

	// Транспортная ошибка не трогает сессию.
	assert.True(t, store.Authenticated())
	assert.NotEmpty(t, notes.all())
}

// TestClient_MalformedEnvelope тестирует ответ, не являющийся конвертом.
func TestClient_MalformedEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>это не json</html>"))
	})

	store := newAuthenticatedStore(t)
	client := newTestClient(t, handler, store, func(string) {}, nil)

	err := client.Get(context.Background(), "/api/category/list", nil, nil)

	assert.True(t, apierr.IsKind(err, apierr.KindTransport))
	assert.True(t, store.Authenticated())
}

// =====================================
// Тесты формирования запроса
// =====================================

// TestClient_BearerHeader тестирует прикрепление токена к запросу.
func TestClient_BearerHeader(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"code":200}`))
	})

	t.Run("с токеном", func(t *testing.T) {
		store := newAuthenticatedStore(t)
		client := newTestClient(t, handler, store, nil, nil)

		require.NoError(t, client.Get(context.Background(), "/api/user/info", nil, nil))
		assert.Equal(t, "Bearer test-token", gotAuth)
	})

	t.Run("без токена", func(t *testing.T) {
		store, err := session.NewStore(newMemStorage())
		require.NoError(t, err)
		client := newTestClient(t, handler, store, nil, nil)

		require.NoError(t, client.Get(context.Background(), "/api/product/list", nil, nil))
		assert.Empty(t, gotAuth, "без сессии запрос уходит неаутентифицированным")
	})
}

// TestClient_QueryParams тестирует передачу query-параметров.
func TestClient_QueryParams(t *testing.T) {
	var gotQuery url.Values
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"code":200}`))
	})

	store := newAuthenticatedStore(t)
	client := newTestClient(t, handler, store, nil, nil)

	query := url.Values{}
	query.Set("viewType", "buyer")
	query.Set("pageNum", "2")
	require.NoError(t, client.Get(context.Background(), "/api/order/list", query, nil))

	assert.Equal(t, "buyer", gotQuery.Get("viewType"))
	assert.Equal(t, "2", gotQuery.Get("pageNum"))
}

// TestClient_RequestID тестирует уникальный идентификатор запроса.
func TestClient_RequestID(t *testing.T) {
	ids := map[string]bool{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids[r.Header.Get("X-Request-Id")] = true
		_, _ = w.Write([]byte(`{"code":200}`))
	})

	store := newAuthenticatedStore(t)
	client := newTestClient(t, handler, store, nil, nil)

	require.NoError(t, client.Get(context.Background(), "/api/product/list", nil, nil))
	require.NoError(t, client.Get(context.Background(), "/api/product/list", nil, nil))

	assert.Len(t, ids, 2, "каждый запрос получает собственный X-Request-Id")
	assert.NotContains(t, ids, "")
}

// TestNewClient_Validation тестирует проверку конфигурации шлюза.
func TestNewClient_Validation(t *testing.T) {
	store, err := session.NewStore(newMemStorage())
	require.NoError(t, err)

	_, err = NewClient(Config{Session: store})
	assert.Error(t, err, "BaseURL обязателен")

	_, err = NewClient(Config{BaseURL: "http://localhost:8080"})
	assert.Error(t, err, "хранилище сессии обязательно")
}
