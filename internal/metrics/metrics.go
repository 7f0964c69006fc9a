package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - общее количество HTTP запросов к консоли
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Общее количество HTTP запросов к консоли",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration - длительность запросов к консоли
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Длительность HTTP запросов к консоли в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)

	// BackendRequestsTotal - запросы к REST API бэкенда
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Общее количество запросов к API бэкенда",
		},
		[]string{"method", "status"},
	)

	// BackendRequestDuration - длительность запросов к бэкенду
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Длительность запросов к API бэкенда в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// SessionExpiredTotal - сколько раз была объявлена истекшая сессия
	SessionExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_expired_total",
			Help: "Количество событий истечения сессии",
		},
	)

	// SocketEventsTotal - входящие события сокетов по пространствам имен
	SocketEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socket_events_total",
			Help: "Количество входящих событий Socket.IO",
		},
		[]string{"namespace", "event"},
	)

	// SocketReconnectsTotal - попытки переподключения сокетов
	SocketReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socket_reconnect_attempts_total",
			Help: "Количество попыток переподключения Socket.IO",
		},
		[]string{"namespace"},
	)

	// PaymentPollsTotal - опросы статуса оплаты Pix
	PaymentPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_payment_polls_total",
			Help: "Количество опросов статуса оплаты",
		},
		[]string{"result"},
	)

	// NewOrdersTotal - новые заказы, полученные по сокету
	NewOrdersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_new_orders_total",
			Help: "Количество новых заказов, полученных в реальном времени",
		},
	)
)

// TrackBackendRequest отслеживает запрос к API бэкенда
func TrackBackendRequest(method string, status int, duration time.Duration) {
	statusStr := "error"
	if status > 0 {
		statusStr = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(method, statusStr).Inc()
	BackendRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}
