package content

import (
	"context"
	"errors"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/httpx"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const bioResource = "bio"

// Profile owns the bio record. The store is keyed by BioID so there is
// never more than one row.
type Profile struct {
	store    *store.Store[Bio]
	cache    *cache.Cache
	notifier Notifier
}

func NewProfile(deps Deps) *Profile {
	deps = deps.withDefaults()
	return &Profile{
		store:    store.New[Bio](deps.DB, ""),
		cache:    deps.Cache,
		notifier: deps.Notifier,
	}
}

// Current returns the stored bio or store.ErrNotFound.
func (p *Profile) Current(ctx context.Context) (*Bio, error) {
	return cache.Load(p.cache, bioResource, func() (*Bio, error) {
		return p.store.Get(ctx, BioID)
	})
}

func (p *Profile) Save(ctx context.Context, bio *Bio) error {
	bio.ID = BioID
	if err := p.store.Save(ctx, bio); err != nil {
		return err
	}
	p.changed()
	return nil
}

// SetResume points the bio at an uploaded resume, or clears it when url is
// empty. A missing bio is created holding just the resume.
func (p *Profile) SetResume(ctx context.Context, url string) error {
	bio, err := p.store.Get(ctx, BioID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		bio = emptyBio()
	case err != nil:
		return err
	}

	bio.Resume = url
	return p.Save(ctx, bio)
}

func (p *Profile) changed() {
	p.cache.Invalidate(bioResource)
	p.notifier.Notify(bioResource)
}

func emptyBio() *Bio {
	return &Bio{Roles: []string{}}
}

// emptyBioView is what GET /bio returns before a bio has been saved.
var emptyBioView = map[string]any{
	"name":         "",
	"roles":        []string{},
	"description":  "",
	"github":       "",
	"resume":       "",
	"linkedin":     "",
	"twitter":      "",
	"insta":        "",
	"facebook":     "",
	"profileImage": "",
}

type BioHandler struct {
	profile   *Profile
	validator *validation.Validator
	log       zerolog.Logger
}

func NewBioHandler(profile *Profile, deps Deps) *BioHandler {
	deps = deps.withDefaults()
	return &BioHandler{
		profile:   profile,
		validator: deps.Validator,
		log:       deps.Log.With().Str("resource", bioResource).Logger(),
	}
}

func (h *BioHandler) RegisterRoutes(router chi.Router, gate *auth.Gate) {
	router.Get("/bio", h.Get)
	router.Put("/bio", gate.Protect(h.Put))
}

func (h *BioHandler) Get(w http.ResponseWriter, r *http.Request) {
	bio, err := h.profile.Current(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.RespondWithJSON(w, http.StatusOK, emptyBioView)
			return
		}
		handleError(w, h.log, "Bio", err)
		return
	}
	httpx.RespondWithJSON(w, http.StatusOK, bio)
}

func (h *BioHandler) Put(w http.ResponseWriter, r *http.Request, session auth.Session) {
	existing, err := h.profile.store.Get(r.Context(), BioID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		existing = emptyBio()
	case err != nil:
		handleError(w, h.log, "Bio", err)
		return
	}

	_, fields, err := readFields(w, r)
	if err != nil {
		handleError(w, h.log, "Bio", err)
		return
	}

	bio, err := merge(existing, fields)
	if err != nil {
		handleError(w, h.log, "Bio", err)
		return
	}
	bio.Base = existing.Base

	if err := h.validator.Validate(bio); err != nil {
		handleError(w, h.log, "Bio", err)
		return
	}

	if err := h.profile.Save(r.Context(), bio); err != nil {
		handleError(w, h.log, "Bio", err)
		return
	}

	h.log.Info().Str("admin", session.Email).Msg("bio updated")
	httpx.RespondWithJSON(w, http.StatusOK, bio)
}
