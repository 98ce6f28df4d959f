package devbackend

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/password"
	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// userRequest данные для создания или обновления пользователя администратором.
type userRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	FullName string      `json:"fullName" validate:"required,min=2"`
	Password string      `json:"password" validate:"omitempty,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=admin student"`
	IsActive bool        `json:"isActive"`
}

// handleUsers возвращает всех пользователей.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Users())
}

// handleCreateUser создает пользователя с заданной ролью.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	const op = "devbackend.handleCreateUser"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, ok := decodeBody[userRequest](s, w, r)
	if !ok {
		return
	}
	if req.Password == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, Error("field password is a required field"))
		return
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		log.Error("failed to hash password", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
		return
	}
	user, err := s.storage.CreateUser(req.Email, req.FullName, hash, req.Role)
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, Error("email already registered"))
			return
		}
		log.Error("failed to create user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
		return
	}

	log.Info("user created", slog.String("email", user.Email), slog.String("role", string(user.Role)))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, user)
}

// handleUpdateUser обновляет пользователя.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[userRequest](s, w, r)
	if !ok {
		return
	}
	user, err := s.storage.UpdateUser(chi.URLParam(r, "id"), req.Email, req.FullName, req.Role, req.IsActive)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("user not found"))
		return
	}
	render.JSON(w, r, user)
}

// handleDeleteUser удаляет пользователя.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteUser(chi.URLParam(r, "id")); err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("user not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
