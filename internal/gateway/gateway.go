package gateway

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
)

// SessionStore описывает часть хранилища сессии, нужную шлюзу:
// свежий токен перед каждой отправкой и очистку при жёстком 401.
type SessionStore interface {
	Token() string
	Logout() error
}

// NavigateFunc вызывается шлюзом, когда пользователя нужно перенаправить
// (единственный случай — на маршрут входа после жёсткого 401).
type NavigateFunc func(path string)

// Gateway реализует http.RoundTripper поверх базового транспорта.
//
// На каждый исходящий запрос токен читается из хранилища сессии заново:
// между постановкой запроса и его отправкой мог произойти выход или
// повторный вход. На каждый ответ 401 выполняется классификация по таблице
// конечных точек: жёсткий отказ очищает сессию и ведет на маршрут входа,
// мягкий проходит к вызывающему без побочных эффектов.
type Gateway struct {
	base       http.RoundTripper
	session    SessionStore
	classifier *Classifier
	limiter    *rate.Limiter
	metrics    *Metrics
	navigate   NavigateFunc
	loginRoute string
	log        *slog.Logger
}

// Options параметры создания шлюза.
type Options struct {
	// Base — базовый транспорт; nil означает http.DefaultTransport.
	Base http.RoundTripper
	// SoftEndpoints — таблица мягких конечных точек;
	// nil означает DefaultSoftEndpoints().
	SoftEndpoints []string
	// Navigate — обработчик перенаправления; nil означает "только лог".
	Navigate NavigateFunc
	// LoginRoute — маршрут входа; пустая строка означает "/login".
	LoginRoute string
	// RateLimit и RateBurst ограничивают частоту исходящих запросов;
	// нулевой RateLimit отключает ограничение.
	RateLimit float64
	RateBurst int
	// Registry — реестр prometheus для метрик шлюза, может быть nil.
	Registry prometheus.Registerer
}

// New создает шлюз исходящих запросов.
func New(session SessionStore, log *slog.Logger, opts Options) *Gateway {
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	soft := opts.SoftEndpoints
	if soft == nil {
		soft = DefaultSoftEndpoints()
	}
	loginRoute := opts.LoginRoute
	if loginRoute == "" {
		loginRoute = "/login"
	}
	limit := rate.Inf
	burst := opts.RateBurst
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
		if burst <= 0 {
			burst = 1
		}
	}
	return &Gateway{
		base:       base,
		session:    session,
		classifier: NewClassifier(soft),
		limiter:    rate.NewLimiter(limit, burst),
		metrics:    NewMetrics(opts.Registry),
		navigate:   opts.Navigate,
		loginRoute: loginRoute,
		log:        log,
	}
}

// Client возвращает http.Client, отправляющий запросы через шлюз.
func (g *Gateway) Client() *http.Client {
	return &http.Client{Transport: g}
}

// RoundTrip подставляет bearer-токен и классифицирует ответы 401.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	const op = "gateway.RoundTrip"

	if err := g.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// RoundTripper не должен мутировать исходный запрос
	out := req.Clone(req.Context())
	if token := g.session.Token(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.base.RoundTrip(out)
	if err != nil {
		g.metrics.recordRequest(req.Method, "transport_error")
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		g.metrics.recordRequest(req.Method, "ok")
		return resp, nil
	}

	if g.classifier.IsSoft(req.URL.Path) {
		// нормальный ответ "права еще нет", сессию не трогаем
		g.metrics.recordRequest(req.Method, "soft_401")
		g.metrics.softDenials.Inc()
		return resp, nil
	}

	g.metrics.recordRequest(req.Method, "hard_401")
	g.metrics.hardFailures.Inc()
	g.log.Warn("hard authentication failure, clearing session",
		slog.String("path", req.URL.Path))
	if err := g.session.Logout(); err != nil {
		g.log.Error("failed to clear session", sl.Err(err))
	}
	if g.navigate != nil {
		g.navigate(g.loginRoute)
	}
	return resp, nil
}
