package devbackend

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
)

// decodeBody читает JSON-тело запроса в структуру и прогоняет ее через
// валидатор. При ошибке сам пишет ответ и возвращает ok=false.
func decodeBody[T any](s *Server, w http.ResponseWriter, r *http.Request) (*T, bool) {
	const op = "devbackend.decodeBody"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req T
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
