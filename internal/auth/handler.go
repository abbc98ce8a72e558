package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/httpx"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Handler struct {
	service   *Service
	gate      *Gate
	cookie    CookieOptions
	validator *validation.Validator
	log       zerolog.Logger
}

func NewHandler(service *Service, gate *Gate, cookie CookieOptions, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		gate:      gate,
		cookie:    cookie,
		validator: validation.New(),
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/logout", h.Logout)
	router.Get("/auth/session", h.gate.Protect(h.Session))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		if errs, ok := validation.AsErrors(err); ok {
			httpx.RespondWithDetails(w, http.StatusBadRequest, "Validation failed", errs)
			return
		}
		h.log.Error().Err(err).Msg("login validation failed")
		httpx.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.log.Warn().Str("email", req.Email).Msg("failed login")
			httpx.RespondWithError(w, http.StatusUnauthorized, ErrInvalidCredentials.Error())
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		httpx.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.log.Info().Str("email", req.Email).Msg("admin logged in")

	SetSessionCookie(w, h.cookie, result.Token, result.ExpiresAt)
	httpx.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request, session Session) {
	httpx.RespondWithJSON(w, http.StatusOK, session)
}
