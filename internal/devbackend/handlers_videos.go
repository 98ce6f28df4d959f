package devbackend

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// maxUploadBytes потолок multipart-формы при создании видео.
const maxUploadBytes = 512 * 1024 * 1024

// handleCatalog возвращает каталог опубликованных видео с аннотациями
// доступа текущего пользователя.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Catalog(contextUserID(r)))
}

// handleVideos возвращает все видео (административный список).
func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Videos())
}

// handleVideo возвращает видео по идентификатору.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	video, err := s.storage.Video(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("video not found"))
		return
	}
	render.JSON(w, r, video)
}

// handleWatch выдает ссылку на воспроизведение. Без активной подписки
// отвечает 403: пользователь аутентифицирован, но права нет. 401 здесь
// означает только проблему с токеном и обрабатывается клиентом как выход.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	const op = "devbackend.handleWatch"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	video, err := s.storage.Video(id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("video not found"))
		return
	}
	userID := contextUserID(r)
	if !s.storage.HasAccess(userID) {
		log.Warn("watch denied, no active subscription",
			slog.String("user_id", userID), slog.String("video_id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, Error("no active subscription"))
		return
	}

	token, err := s.jwtMaker.GenerateToken(userID, "", string(models.RoleStudent))
	if err != nil {
		log.Error("failed to issue playback token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("internal error"))
		return
	}
	s.storage.IncrementViews(id)
	render.JSON(w, r, map[string]string{
		"videoUrl":    video.VideoURL,
		"accessToken": token,
	})
}

// handleCreateVideo принимает multipart-форму с метаданными, файлом видео
// и превью. Файлы не сохраняются на диск, генерируются только ссылки.
func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	const op = "devbackend.handleCreateVideo"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("invalid multipart form"))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("field title is a required field"))
		return
	}
	duration, _ := strconv.Atoi(r.FormValue("duration"))
	isPublished, _ := strconv.ParseBool(r.FormValue("isPublished"))

	video := models.Video{
		Title:       title,
		Description: r.FormValue("description"),
		CategoryID:  r.FormValue("categoryId"),
		Duration:    duration,
		IsPublished: isPublished,
	}
	if _, header, err := r.FormFile("video"); err == nil {
		video.VideoURL = fmt.Sprintf("/uploads/videos/%s", header.Filename)
	}
	if _, header, err := r.FormFile("thumbnail"); err == nil {
		video.ThumbnailURL = fmt.Sprintf("/uploads/thumbnails/%s", header.Filename)
	}

	created := s.storage.SaveVideo(video)
	log.Info("video created", slog.String("video_id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, created)
}

// handleUpdateVideo обновляет метаданные видео.
func (s *Server) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		CategoryID  string `json:"categoryId"`
		Duration    int    `json:"duration"`
		IsPublished bool   `json:"isPublished"`
	}](s, w, r)
	if !ok {
		return
	}
	video, err := s.storage.UpdateVideo(chi.URLParam(r, "id"), models.Video{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Duration:    req.Duration,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("video not found"))
		return
	}
	render.JSON(w, r, video)
}

// handleDeleteVideo удаляет видео.
func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteVideo(chi.URLParam(r, "id")); err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, Error("video not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
