package media

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	DefaultFolder = "portfolio"
	ResumeFolder  = "portfolio/docs"

	maxUploadBytes = 10 << 20
)

// ResumeStore records where the current resume lives.
type ResumeStore interface {
	SetResume(ctx context.Context, url string) error
}

type Handler struct {
	uploader Uploader
	resumes  ResumeStore
	log      zerolog.Logger
}

func NewHandler(uploader Uploader, resumes ResumeStore, log zerolog.Logger) *Handler {
	return &Handler{uploader: uploader, resumes: resumes, log: log}
}

func (h *Handler) RegisterRoutes(router chi.Router, gate *auth.Gate) {
	router.Post("/upload", gate.Protect(h.Upload))
	router.Delete("/upload", gate.Protect(h.Destroy))
	router.Post("/admin/resume", gate.Protect(h.UploadResume))
	router.Delete("/admin/resume", gate.Protect(h.DeleteResume))
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request, session auth.Session) {
	asset, ok := h.receive(w, r, "file", "")
	if !ok {
		return
	}
	h.log.Info().Str("public_id", asset.PublicID).Str("admin", session.Email).Msg("file uploaded")
	httpx.RespondWithJSON(w, http.StatusOK, asset)
}

func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req struct {
		PublicID     string `json:"publicId"`
		ResourceType string `json:"resourceType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicID == "" {
		httpx.RespondWithError(w, http.StatusBadRequest, "publicId is required")
		return
	}
	if req.ResourceType != "" && !slices.Contains(ResourceTypes, req.ResourceType) {
		httpx.RespondWithError(w, http.StatusBadRequest, "resourceType must be one of: image, video, raw")
		return
	}

	if err := h.uploader.Destroy(r.Context(), req.PublicID, req.ResourceType); err != nil {
		h.log.Error().Err(err).Str("public_id", req.PublicID).Msg("media delete failed")
		httpx.RespondWithError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	h.log.Info().Str("public_id", req.PublicID).Str("admin", session.Email).Msg("file deleted")
	httpx.Message(w, http.StatusOK, "File deleted")
}

func (h *Handler) UploadResume(w http.ResponseWriter, r *http.Request, session auth.Session) {
	asset, ok := h.receive(w, r, "resume", ResumeFolder)
	if !ok {
		return
	}

	if err := h.resumes.SetResume(r.Context(), asset.URL); err != nil {
		h.log.Error().Err(err).Msg("failed to store resume url")
		httpx.RespondWithError(w, http.StatusInternalServerError, "An error occurred processing your request")
		return
	}

	h.log.Info().Str("public_id", asset.PublicID).Str("admin", session.Email).Msg("resume uploaded")
	httpx.RespondWithJSON(w, http.StatusOK, asset)
}

func (h *Handler) DeleteResume(w http.ResponseWriter, r *http.Request, session auth.Session) {
	if err := h.resumes.SetResume(r.Context(), ""); err != nil {
		h.log.Error().Err(err).Msg("failed to clear resume url")
		httpx.RespondWithError(w, http.StatusInternalServerError, "An error occurred processing your request")
		return
	}
	h.log.Info().Str("admin", session.Email).Msg("resume removed")
	httpx.Message(w, http.StatusOK, "Resume deleted")
}

// receive uploads the multipart file in field. An empty folder means the
// request's folder field, falling back to DefaultFolder.
func (h *Handler) receive(w http.ResponseWriter, r *http.Request, field, folder string) (*Asset, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.RespondWithError(w, http.StatusBadRequest, "No file provided")
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(field)
	if err != nil {
		httpx.RespondWithError(w, http.StatusBadRequest, "No file provided")
		return nil, false
	}
	defer file.Close()

	if folder == "" {
		folder = cleanFolder(r.FormValue("folder"))
	}

	asset, err := h.uploader.Upload(r.Context(), file, folder)
	if err != nil {
		h.log.Error().Err(err).Str("folder", folder).Msg("upload failed")
		httpx.RespondWithError(w, http.StatusInternalServerError, "upload failed")
		return nil, false
	}
	return asset, true
}

func cleanFolder(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" || strings.Contains(folder, "..") {
		return DefaultFolder
	}
	return folder
}
