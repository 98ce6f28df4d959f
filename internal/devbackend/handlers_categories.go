package devbackend

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
)

// categoryRequest данные для создания или обновления категории.
type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// handleCategories возвращает все категории.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Categories())
}

// handleCreateCategory создает категорию.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[categoryRequest](s, w, r)
	if !ok {
		return
	}
	category := s.storage.SaveCategory(req.Name, req.Description)
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, category)
}

// handleUpdateCategory обновляет категорию.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[categoryRequest](s, w, r)
	if !ok {
		return
	}
	category, err := s.storage.UpdateCategory(chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("category not found"))
		return
	}
	render.JSON(w, r, category)
}

// handleDeleteCategory удаляет категорию.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("category not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
