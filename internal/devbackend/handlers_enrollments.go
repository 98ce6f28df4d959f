package devbackend

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/video-subscription-client/internal/lib/sl"
)

// maxVoucherBytes потолок размера ваучера, совпадает с клиентским.
const maxVoucherBytes = 5 * 1024 * 1024

// handleCheckAccess отвечает 200 {hasAccess:true} при действующей подписке
// и 401 без нее. 401 здесь — мягкий сигнал "права еще нет", клиентский шлюз
// не очищает по нему сессию.
func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	if !s.storage.HasAccess(contextUserID(r)) {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Error("no active subscription"))
		return
	}
	render.JSON(w, r, map[string]any{"hasAccess": true})
}

// handleMyEnrollment возвращает текущую запись пользователя.
// Отсутствие записи кодируется как 401, в манере продакшен-бэкенда.
func (s *Server) handleMyEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollment, err := s.storage.CurrentEnrollment(contextUserID(r))
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, Error("no enrollment found"))
		return
	}
	render.JSON(w, r, enrollment)
}

// handleRequestSubscription принимает multipart-заявку: id плана и ваучер.
func (s *Server) handleRequestSubscription(w http.ResponseWriter, r *http.Request) {
	const op = "devbackend.handleRequestSubscription"
	log := s.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxVoucherBytes + 1024); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("invalid multipart form"))
		return
	}

	planID := r.FormValue("subscriptionPlanId")
	if planID == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("field subscriptionPlanId is a required field"))
		return
	}

	file, header, err := r.FormFile("paymentVoucher")
	if err != nil {
		log.Error("payment voucher is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("payment voucher is required"))
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxVoucherBytes+1))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("failed to read voucher"))
		return
	}
	if len(data) > maxVoucherBytes {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("voucher file must not exceed 5MB"))
		return
	}
	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, Error("only JPG, PNG or WEBP images are allowed"))
		return
	}

	voucherURL := fmt.Sprintf("/uploads/vouchers/%s", header.Filename)
	enrollment, err := s.storage.SubmitEnrollment(contextUserID(r), planID, voucherURL)
	if err != nil {
		if errors.Is(err, errDuplicate) {
			log.Warn("duplicate subscription request", slog.String("plan_id", planID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, Error("active or pending enrollment already exists"))
			return
		}
		if errors.Is(err, errNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, Error("subscription plan not found"))
			return
		}
		log.Error("failed to submit enrollment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, Error("could not submit enrollment"))
		return
	}

	log.Info("enrollment submitted",
		slog.String("enrollment_id", enrollment.ID),
		slog.String("plan_id", planID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, enrollment)
}

// handleEnrollments возвращает все записи (административный список).
func (s *Server) handleEnrollments(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.storage.Enrollments())
}

// handleResolveEnrollment выполняет approve или reject заявки.
// Повторное решение по уже разрешённой заявке — конфликт, не повторное
// применение.
func (s *Server) handleResolveEnrollment(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "devbackend.handleResolveEnrollment"
		log := s.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		enrollment, err := s.storage.ResolveEnrollment(id, approve)
		if err != nil {
			if errors.Is(err, errNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, Error("enrollment not found"))
				return
			}
			if errors.Is(err, errNotPending) {
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, Error("enrollment is not awaiting approval"))
				return
			}
			log.Error("failed to resolve enrollment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, Error("could not resolve enrollment"))
			return
		}

		log.Info("enrollment resolved",
			slog.String("enrollment_id", id),
			slog.String("status", string(enrollment.Status)))
		render.JSON(w, r, enrollment)
	}
}
