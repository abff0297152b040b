// Package metrics предоставляет Prometheus метрики исходящих запросов клиента.
//
// Типы метрик в Prometheus:
//   - Counter: только растёт (запросы, ошибки) — "сколько всего произошло"
//   - Histogram: распределение значений (latency) — "как быстро работает"
//
// Метрики пишутся в стандартный регистр prometheus; приложение, встроившее
// клиент, само решает, как их экспортировать.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal — счётчик всех исходящих запросов к API маркетплейса.
	// Labels: method (HTTP метод), status ("success", "error", "transport_error").
	// PromQL пример: rate(marketclient_requests_total{status="error"}[5m])
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketclient_requests_total",
			Help: "Общее количество исходящих запросов по методу и статусу",
		},
		[]string{"method", "status"},
	)

	// RequestDuration — гистограмма latency исходящих запросов.
	// PromQL пример: histogram_quantile(0.95, rate(marketclient_request_duration_seconds_bucket[5m]))
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "marketclient_request_duration_seconds",
			Help: "Время выполнения исходящего запроса в секундах",
			// Buckets оптимизированы для сетевых вызовов: от 5ms до таймаута 10s
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)
)

// RecordRequest записывает метрики исходящего запроса.
// method — HTTP метод ("GET", "POST", ...), status — результат запроса.
func RecordRequest(method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, status).Inc()
	RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
