package contact

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/httpx"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	service   *Service
	validator *validation.Validator
	log       zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validation.New(),
		log:       log,
	}
}

// RegisterRoutes mounts the public form behind limit and the inbox behind
// the gate.
func (h *Handler) RegisterRoutes(router chi.Router, gate *auth.Gate, limit func(http.Handler) http.Handler) {
	router.With(limit).Post("/contact", h.Submit)

	router.Route("/admin/messages", func(r chi.Router) {
		r.Get("/", gate.Protect(h.List))
		r.Get("/unread", gate.Protect(h.UnreadCount))
		r.Post("/reply", gate.Protect(h.Reply))
		r.Patch("/{id}/read", gate.Protect(h.MarkRead))
		r.Delete("/{id}", gate.Protect(h.Delete))
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if !h.decode(w, r, &sub) {
		return
	}

	result, err := h.service.Submit(r.Context(), sub)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.log.Info().
		Str("message_id", result.Message.ID).
		Bool("notified", result.Notified).
		Msg("contact message received")

	httpx.RespondWithJSON(w, http.StatusOK, map[string]any{
		"message":  "Message sent successfully",
		"id":       result.Message.ID,
		"notified": result.Notified,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	messages, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	httpx.RespondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	count, err := h.service.UnreadCount(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	httpx.RespondWithJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handler) Reply(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req ReplyRequest
	if !h.decode(w, r, &req) {
		return
	}

	msg, err := h.service.Reply(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.log.Info().Str("message_id", msg.ID).Str("admin", session.Email).Msg("reply sent")
	httpx.Message(w, http.StatusOK, "Reply sent successfully")
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Message marked as read")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.log.Info().Str("message_id", id).Str("admin", session.Email).Msg("message deleted")
	httpx.Message(w, http.StatusOK, "Message deleted successfully")
}

// decode reads and validates the body into v, writing the 400 itself when
// that fails.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		httpx.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		if errs, ok := validation.FromDecodeError(body, err); ok {
			httpx.RespondWithDetails(w, http.StatusBadRequest, "Validation failed", errs)
			return false
		}
		httpx.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Validate(v); err != nil {
		if errs, ok := validation.AsErrors(err); ok {
			httpx.RespondWithDetails(w, http.StatusBadRequest, "Validation failed", errs)
			return false
		}
		h.handleServiceError(w, err)
		return false
	}
	return true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.log.Info().Msg("message not found")
		httpx.RespondWithError(w, http.StatusNotFound, "Message not found")
		return
	}
	if errors.Is(err, ErrDelivery) {
		h.log.Error().Err(err).Msg("reply delivery failed")
		httpx.RespondWithError(w, http.StatusInternalServerError, "Failed to send reply")
		return
	}
	h.log.Error().Err(err).Msg("internal error")
	httpx.RespondWithError(w, http.StatusInternalServerError, "An error occurred processing your request")
}
