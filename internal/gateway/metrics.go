package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics собирает счетчики исходящих запросов шлюза.
type Metrics struct {
	requests     *prometheus.CounterVec
	hardFailures prometheus.Counter
	softDenials  prometheus.Counter
}

// NewMetrics создает набор метрик и регистрирует его в переданном реестре.
// Реестр может быть nil, тогда метрики собираются, но нигде не публикуются.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vsclient_requests_total",
			Help: "Количество исходящих запросов по методу и исходу",
		}, []string{"method", "outcome"}),
		hardFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vsclient_auth_failures_total",
			Help: "Количество жёстких отказов аутентификации (401 вне таблицы мягких точек)",
		}),
		softDenials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vsclient_soft_denials_total",
			Help: "Количество мягких отказов права (401 от точек проверки подписки)",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.hardFailures, m.softDenials)
	}
	return m
}

func (m *Metrics) recordRequest(method, outcome string) {
	m.requests.WithLabelValues(method, outcome).Inc()
}
