package content

import (
	"net/http"
	"sort"

	"github.com/aTrapDeer/portfolio-backend/internal/httpx"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

// Schemas serves the field rules of each writable resource so admin forms
// enforce the same constraints as the server.
type Schemas struct {
	rules map[string][]validation.Rule
}

func NewSchemas(extra map[string]any) *Schemas {
	records := map[string]any{
		"bio":        Bio{},
		"skills":     Skill{},
		"experience": Experience{},
		"education":  Education{},
		"projects":   Project{},
	}
	for name, rec := range extra {
		records[name] = rec
	}

	rules := make(map[string][]validation.Rule, len(records))
	for name, rec := range records {
		rules[name] = validation.Describe(rec)
	}
	return &Schemas{rules: rules}
}

func (s *Schemas) RegisterRoutes(router chi.Router) {
	router.Get("/schema", s.Index)
	router.Get("/schema/{resource}", s.Get)
}

func (s *Schemas) Index(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(s.rules))
	for name := range s.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	httpx.RespondWithJSON(w, http.StatusOK, map[string][]string{"resources": names})
}

func (s *Schemas) Get(w http.ResponseWriter, r *http.Request) {
	rules, ok := s.rules[chi.URLParam(r, "resource")]
	if !ok {
		httpx.RespondWithError(w, http.StatusNotFound, "Unknown resource")
		return
	}
	httpx.RespondWithJSON(w, http.StatusOK, rules)
}
