package devbackend

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// planRequest данные для создания или обновления плана.
type planRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	DurationMonths int      `json:"durationMonths" validate:"required,gt=0"`
	IsActive       bool     `json:"isActive"`
	Features       []string `json:"features"`
	VideoIDs       []string `json:"videoIds"`
}

func (s *Server) decodePlan(w http.ResponseWriter, r *http.Request) (*planRequest, bool) {
	const op = "devbackend.decodePlan"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("invalid request body"))
		return nil, false
	}
	if err := s.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, ValidationError(err.(validator.ValidationErrors)))
		return nil, false
	}
	return &req, true
}

func (req *planRequest) toModel(s *Server) models.SubscriptionPlan {
	plan := models.SubscriptionPlan{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		DurationMonths: req.DurationMonths,
		IsActive:       req.IsActive,
		Features:       req.Features,
	}
	for _, videoID := range req.VideoIDs {
		if video, err := s.storage.Video(videoID); err == nil {
			plan.Videos = append(plan.Videos, models.VideoRef{ID: video.ID, Title: video.Title})
		}
	}
	return plan
}

// handlePlans возвращает все планы.
func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Plans(false))
}

// handleActivePlans возвращает планы, предлагаемые студентам.
func (s *Server) handleActivePlans(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Plans(true))
}

// handlePlan возвращает план по идентификатору.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.storage.Plan(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("subscription plan not found"))
		return
	}
	render.JSON(w, r, plan)
}

// handleCreatePlan создает план.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePlan(w, r)
	if !ok {
		return
	}
	plan := s.storage.SavePlan(req.toModel(s))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, plan)
}

// handleUpdatePlan обновляет план.
func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePlan(w, r)
	if !ok {
		return
	}
	plan, err := s.storage.UpdatePlan(chi.URLParam(r, "id"), req.toModel(s))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("subscription plan not found"))
		return
	}
	render.JSON(w, r, plan)
}

// handleTogglePlan переключает признак isActive.
func (s *Server) handleTogglePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.storage.TogglePlan(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("subscription plan not found"))
		return
	}
	render.JSON(w, r, plan)
}

// handleDeletePlan удаляет план.
func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeletePlan(chi.URLParam(r, "id")); err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("subscription plan not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
