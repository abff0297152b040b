// Package api содержит единый шлюз исходящих запросов к API маркетплейса.
//
// Шлюз отвечает за сквозной контракт каждого вызова:
//   - прикрепление bearer-токена из хранилища сессии
//   - распаковку конверта {code, message, data}
//   - реакцию на истечение сессии (сброс + навигация на вход)
//   - потолок времени запроса и классификацию транспортных ошибок
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"example.com/campus-market/apierr"
	"example.com/campus-market/pkg/logger"
	"example.com/campus-market/pkg/metrics"
	"example.com/campus-market/session"
)

// defaultTimeout — потолок времени на один запрос.
// Превышение трактуется как транспортная ошибка.
const defaultTimeout = 10 * time.Second

// Notifier доставляет пользователю видимое уведомление об ошибке.
// nil допустим: уведомления уходят в лог.
type Notifier func(message string)

// Config — конфигурация шлюза.
type Config struct {
	// BaseURL — адрес API сервера (например "http://localhost:8080").
	BaseURL string

	// Timeout — потолок времени запроса. 0 — значение по умолчанию (10s).
	Timeout time.Duration

	// Session — хранилище сессии; источник токена и цель сброса при 401.
	Session *session.Store

	// Notifier — канал пользовательских уведомлений (опционально).
	Notifier Notifier

	// OnSessionExpired — навигация на экран входа при истечении сессии.
	// Вызывается не более одного раза на фактический сброс сессии,
	// сколько бы одновременных запросов ни получили 401.
	OnSessionExpired func()

	// HTTPClient позволяет подменить транспорт (для тестов).
	// Таймаут при этом берётся из переданного клиента.
	HTTPClient *http.Client
}

// Client — шлюз исходящих запросов.
// Безопасен для одновременного использования из нескольких горутин:
// единственное разделяемое изменяемое состояние — хранилище сессии.
type Client struct {
	httpClient       *http.Client
	baseURL          string
	session          *session.Store
	notifier         Notifier
	onSessionExpired func()
	tracer           trace.Tracer
}

// NewClient создаёт шлюз запросов.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("не задан адрес API сервера")
	}
	if cfg.Session == nil {
		return nil, fmt.Errorf("не задано хранилище сессии")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient:       httpClient,
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		session:          cfg.Session,
		notifier:         cfg.Notifier,
		onSessionExpired: cfg.OnSessionExpired,
		tracer:           otel.Tracer("campus-market/api"),
	}, nil
}

// Get выполняет GET запрос и распаковывает data в out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post выполняет POST запрос с JSON телом и распаковывает data в out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put выполняет PUT запрос с JSON телом и распаковывает data в out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete выполняет DELETE запрос.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// do выполняет один запрос по сквозному контракту шлюза.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	log := logger.FromContext(ctx)

	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Ответ не получен: сетевая ошибка или таймаут. Сессию не трогаем.
		metrics.RecordRequest(method, "transport_error", time.Since(start))
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("Транспортная ошибка")

		apiErr := apierr.Transport("сетевая ошибка, попробуйте позже", err)
		c.notify(apiErr.Message)
		return apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordRequest(method, "transport_error", time.Since(start))
		span.SetStatus(codes.Error, err.Error())

		apiErr := apierr.Transport("ошибка чтения ответа сервера", err)
		c.notify(apiErr.Message)
		return apiErr
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	// Транспортный 401 — истечение сессии независимо от тела ответа.
	if resp.StatusCode == http.StatusUnauthorized {
		metrics.RecordRequest(method, "error", time.Since(start))
		span.SetStatus(codes.Error, "unauthorized")
		c.expireSession()
		return apierr.Authentication("сессия истекла, войдите заново")
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		metrics.RecordRequest(method, "transport_error", time.Since(start))
		span.SetStatus(codes.Error, "malformed envelope")

		apiErr := apierr.Transport("некорректный ответ сервера", err)
		c.notify(apiErr.Message)
		return apiErr
	}

	if envelope.TraceID != "" {
		span.SetAttributes(attribute.String("server.trace_id", envelope.TraceID))
	}

	if envelope.ok() {
		metrics.RecordRequest(method, "success", time.Since(start))
		return decodeData(envelope.Data, out)
	}

	metrics.RecordRequest(method, "error", time.Since(start))
	span.SetStatus(codes.Error, envelope.Message)

	// 401 в конверте равносилен транспортному: сброс сессии и навигация.
	if envelope.Code == codeUnauthorized {
		c.expireSession()
		return apierr.Authentication("сессия истекла, войдите заново")
	}

	// Прочие коды — прикладная ошибка: сообщение сервера показывается
	// пользователю и возвращается вызывающему коду.
	message := envelope.Message
	if message == "" {
		message = "запрос отклонён сервером"
	}
	log.Warn().
		Int("code", envelope.Code).
		Str("method", method).
		Str("path", path).
		Str("server_trace_id", envelope.TraceID).
		Msg("Сервер отклонил запрос")
	c.notify(message)
	return apierr.Server(envelope.Code, message)
}

// newRequest собирает HTTP запрос: JSON тело, bearer-токен,
// идентификатор запроса и заголовки трассировки.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.New().String())

	// Без токена запрос уходит неаутентифицированным — решает сервер.
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// W3C traceparent для сквозной трассировки клиент → сервер.
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// expireSession сбрасывает сессию и уводит пользователя на экран входа.
// Сброс и навигация происходят ровно один раз на фактическое истечение:
// Logout() сообщает, была ли сессия, а повторные 401 от одновременных
// запросов видят уже сброшенное состояние.
func (c *Client) expireSession() {
	if !c.session.Logout() {
		return
	}

	logger.Info().Msg("Сессия истекла — выполнен выход")
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	c.notify("сессия истекла, войдите заново")
}

// notify доставляет пользователю уведомление или пишет его в лог.
func (c *Client) notify(message string) {
	if c.notifier != nil {
		c.notifier(message)
		return
	}
	logger.Warn().Str("notification", message).Msg("Уведомление пользователю")
}

// decodeData распаковывает data конверта в out.
// out == nil означает, что вызывающему коду нагрузка не нужна.
func decodeData(data json.RawMessage, out any) error {
	if out == nil {
		return nil
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("ошибка распаковки ответа: %w", err)
	}
	return nil
}
