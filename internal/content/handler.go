// Package content serves the portfolio collections: the bio singleton and the
// ordered skills, experience, education and projects lists.
package content

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/cache"
	"github.com/aTrapDeer/portfolio-backend/internal/httpx"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Notifier is told which resource changed after each successful write.
type Notifier interface {
	Notify(resource string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

type Deps struct {
	DB        *gorm.DB
	Cache     *cache.Cache
	Notifier  Notifier
	Validator *validation.Validator
	Log       zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.New(0)
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	return d
}

// Handler serves CRUD for one ordered collection.
type Handler[T any, PT interface {
	*T
	store.Model
}] struct {
	name      string
	label     string
	store     *store.Store[T]
	cache     *cache.Cache
	notifier  Notifier
	validator *validation.Validator
	log       zerolog.Logger
}

// NewHandler builds the handler for the collection mounted at /<name>.
// label is the singular used in response messages.
func NewHandler[T any, PT interface {
	*T
	store.Model
}](name, label string, deps Deps) *Handler[T, PT] {
	deps = deps.withDefaults()
	return &Handler[T, PT]{
		name:      name,
		label:     label,
		store:     store.New[T](deps.DB, store.OrderBySequence),
		cache:     deps.Cache,
		notifier:  deps.Notifier,
		validator: deps.Validator,
		log:       deps.Log.With().Str("resource", name).Logger(),
	}
}

func (h *Handler[T, PT]) Name() string {
	return h.name
}

func (h *Handler[T, PT]) RegisterRoutes(router chi.Router, gate *auth.Gate) {
	router.Route("/"+h.name, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", gate.Protect(h.Create))
		r.Get("/{id}", h.Get)
		r.Put("/{id}", gate.Protect(h.Update))
		r.Delete("/{id}", gate.Protect(h.Delete))
	})
}

func (h *Handler[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	items, err := cache.Load(h.cache, h.name, func() ([]T, error) {
		return h.store.List(r.Context())
	})
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.RespondWithJSON(w, http.StatusOK, items)
}

func (h *Handler[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	httpx.RespondWithJSON(w, http.StatusOK, rec)
}

func (h *Handler[T, PT]) Create(w http.ResponseWriter, r *http.Request, session auth.Session) {
	body, fields, err := readFields(w, r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	rec := new(T)
	if err := decodeRecord(body, rec); err != nil {
		h.handleError(w, err)
		return
	}
	*PT(rec).Meta() = store.Base{}

	if err := h.validator.Validate(rec); err != nil {
		h.handleError(w, err)
		return
	}

	// Without an explicit order the record goes to the end of the list.
	if _, ok := fields["order"]; !ok {
		if seq, ok := any(rec).(store.Sequenced); ok {
			n, err := h.store.Count(r.Context())
			if err != nil {
				h.handleError(w, err)
				return
			}
			seq.SetOrder(int(n))
		}
	}

	if err := h.store.Create(r.Context(), rec); err != nil {
		h.handleError(w, err)
		return
	}
	h.changed()

	h.log.Info().Str("id", PT(rec).Meta().ID).Str("admin", session.Email).Msg("created")
	httpx.RespondWithJSON(w, http.StatusCreated, rec)
}

func (h *Handler[T, PT]) Update(w http.ResponseWriter, r *http.Request, session auth.Session) {
	existing, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	_, fields, err := readFields(w, r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	rec, err := merge(existing, fields)
	if err != nil {
		h.handleError(w, err)
		return
	}
	*PT(rec).Meta() = *PT(existing).Meta()

	if err := h.validator.Validate(rec); err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.store.Save(r.Context(), rec); err != nil {
		h.handleError(w, err)
		return
	}
	h.changed()

	h.log.Info().Str("id", PT(rec).Meta().ID).Str("admin", session.Email).Msg("updated")
	httpx.RespondWithJSON(w, http.StatusOK, rec)
}

func (h *Handler[T, PT]) Delete(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}
	h.changed()

	h.log.Info().Str("id", id).Str("admin", session.Email).Msg("deleted")
	httpx.Message(w, http.StatusOK, h.label+" deleted successfully")
}

func (h *Handler[T, PT]) changed() {
	h.cache.Invalidate(h.name)
	h.notifier.Notify(h.name)
}

func (h *Handler[T, PT]) handleError(w http.ResponseWriter, err error) {
	handleError(w, h.log, h.label, err)
}

// handleError maps store and validation failures onto responses. Anything
// unrecognised is logged and reported without detail.
func handleError(w http.ResponseWriter, log zerolog.Logger, label string, err error) {
	if errs, ok := validation.AsErrors(err); ok {
		log.Info().Err(err).Msg("invalid input")
		httpx.RespondWithDetails(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}
	if errors.Is(err, ErrInvalidBody) {
		httpx.RespondWithError(w, http.StatusBadRequest, ErrInvalidBody.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		httpx.RespondWithError(w, http.StatusNotFound, fmt.Sprintf("%s not found", label))
		return
	}
	log.Error().Err(err).Msg("internal error")
	httpx.RespondWithError(w, http.StatusInternalServerError, "An error occurred processing your request")
}
