package devbackend

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/password"
	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// loginRequest — структура входных данных для авторизации.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// registerRequest — структура входных данных для регистрации.
type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,min=2"`
}

// authResponse ответ на вход или регистрацию: токен и пользователь.
type authResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// handleLogin обменивает учетные данные на токен и пользователя.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "devbackend.handleLogin"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("invalid request body"))
		return
	}

	if err := s.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, hash, err := s.storage.UserByEmail(req.Email)
	if err != nil {
		log.Error("user not found", slog.String("email", req.Email))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Error("invalid credentials"))
		return
	}
	if !user.IsActive {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Error("user is deactivated"))
		return
	}
	if err := password.CompareHash(hash, req.Password); err != nil {
		log.Error("wrong password", slog.String("email", req.Email))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Error("invalid credentials"))
		return
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
		return
	}

	log.Info("login success", slog.String("email", user.Email))
	render.JSON(w, r, authResponse{AccessToken: token, User: *user})
}

// handleRegister создает учетную запись студента и сразу выдает токен.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "devbackend.handleRegister"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("invalid request body"))
		return
	}

	if err := s.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, ValidationError(err.(validator.ValidationErrors)))
		return
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
		return
	}

	user, err := s.storage.CreateUser(req.Email, req.FullName, hash, models.RoleStudent)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, Error("email already registered"))
		return
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
		return
	}

	log.Info("user registered", slog.String("email", user.Email))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, authResponse{AccessToken: token, User: *user})
}

// handleProfile возвращает профиль текущего пользователя.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.storage.User(contextUserID(r))
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Error("unauthorized"))
		return
	}
	render.JSON(w, r, user)
}
