package devbackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/video-subscription-client/internal/config"
	"github.com/magabrotheeeer/video-subscription-client/internal/lib/jwt"
	"github.com/magabrotheeeer/video-subscription-client/internal/lib/password"
	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// Server приложение dev-бэкенда: HTTP-сервер, хранилище и зависимости
// обработчиков.
type Server struct {
	server   *http.Server
	log      *slog.Logger
	storage  *Storage
	jwtMaker jwt.Maker
	validate *validator.Validate
}

// New собирает сервер: хранилище в памяти, JWT и маршруты.
func New(cfg *config.Config, log *slog.Logger) *Server {
	s := &Server{
		log:      log,
		storage:  NewStorage(),
		jwtMaker: jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		validate: validator.New(),
	}

	router := chi.NewRouter()
	s.registerRoutes(router)

	s.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes регистрирует все маршруты приложения.
func (s *Server) registerRoutes(r chi.Router) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(JWTMiddleware(s.jwtMaker, s.log))

			r.Get("/auth/profile", s.handleProfile)

			r.Get("/enrollments/check-access", s.handleCheckAccess)
			r.Get("/enrollments/my-enrollment", s.handleMyEnrollment)
			r.Post("/enrollments/request-subscription", s.handleRequestSubscription)

			r.Get("/subscription-plans/active", s.handleActivePlans)
			r.Get("/subscription-plans/{id}", s.handlePlan)

			r.Get("/videos/catalog", s.handleCatalog)
			r.Get("/videos/{id}/watch", s.handleWatch)

			// Административная группа
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(models.RoleAdmin, s.log))

				r.Get("/enrollments", s.handleEnrollments)
				r.Patch("/enrollments/{id}/approve", s.handleResolveEnrollment(true))
				r.Patch("/enrollments/{id}/reject", s.handleResolveEnrollment(false))

				r.Get("/subscription-plans", s.handlePlans)
				r.Post("/subscription-plans", s.handleCreatePlan)
				r.Patch("/subscription-plans/{id}", s.handleUpdatePlan)
				r.Patch("/subscription-plans/{id}/toggle-active", s.handleTogglePlan)
				r.Delete("/subscription-plans/{id}", s.handleDeletePlan)

				r.Get("/videos", s.handleVideos)
				r.Get("/videos/{id}", s.handleVideo)
				r.Post("/videos", s.handleCreateVideo)
				r.Patch("/videos/{id}", s.handleUpdateVideo)
				r.Delete("/videos/{id}", s.handleDeleteVideo)

				r.Get("/categories", s.handleCategories)
				r.Post("/categories", s.handleCreateCategory)
				r.Patch("/categories/{id}", s.handleUpdateCategory)
				r.Delete("/categories/{id}", s.handleDeleteCategory)

				r.Get("/users", s.handleUsers)
				r.Post("/users", s.handleCreateUser)
				r.Patch("/users/{id}", s.handleUpdateUser)
				r.Delete("/users/{id}", s.handleDeleteUser)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}

// Handler возвращает корневой обработчик, удобно для httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Storage открывает хранилище для сидирования тестовых данных.
func (s *Server) Storage() *Storage {
	return s.storage
}

// SeedAdmin создает учетную запись администратора, если ее еще нет.
func (s *Server) SeedAdmin(email, pass string) error {
	const op = "devbackend.SeedAdmin"
	hash, err := password.GetHash(pass)
	if err != nil {
		return err
	}
	if _, err := s.storage.CreateUser(email, "Administrator", hash, models.RoleAdmin); err != nil {
		if errors.Is(err, errEmailTaken) {
			return nil
		}
		return err
	}
	s.log.Info("admin account seeded", slog.String("op", op), slog.String("email", email))
	return nil
}

// Run запускает сервер и корректно останавливает его при отмене контекста.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server starting on", slog.String("address", s.server.Addr))
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.log.Info("shutting down HTTP server gracefully")
		if err := s.server.Shutdown(timeoutCtx); err != nil {
			s.log.Error("shutdown failed", sl.Err(err))
			return err
		}
		return nil
	}
}
