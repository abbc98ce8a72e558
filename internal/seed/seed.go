// Package seed provisions the admin login and, on request, sample content.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/content"
	"github.com/aTrapDeer/portfolio-backend/internal/store"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

//go:embed sample.json
var sampleJSON []byte

type Sample struct {
	Bio        content.Bio          `json:"bio"`
	Skills     []content.Skill      `json:"skills"`
	Experience []content.Experience `json:"experience"`
	Education  []content.Education  `json:"education"`
	Projects   []content.Project    `json:"projects"`
}

type Options struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
	// Content replaces every content collection with the sample data.
	Content bool
}

// LoadSample decodes the bundled sample content. Records get their list
// position as order.
func LoadSample() (*Sample, error) {
	var s Sample
	if err := json.Unmarshal(sampleJSON, &s); err != nil {
		return nil, fmt.Errorf("failed to decode sample content: %w", err)
	}
	s.Bio.ID = content.BioID
	for i := range s.Skills {
		s.Skills[i].Order = i
	}
	for i := range s.Experience {
		s.Experience[i].Order = i
	}
	for i := range s.Education {
		s.Education[i].Order = i
	}
	for i := range s.Projects {
		s.Projects[i].Order = i
	}
	return &s, nil
}

func Run(ctx context.Context, db *gorm.DB, opts Options, log zerolog.Logger) error {
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return fmt.Errorf("admin email and password are required")
	}
	if opts.AdminName == "" {
		opts.AdminName = "Admin"
	}

	admin, err := auth.NewRepository(db).Provision(ctx, opts.AdminEmail, opts.AdminPassword, opts.AdminName)
	if err != nil {
		return fmt.Errorf("failed to provision admin: %w", err)
	}
	log.Info().Str("email", admin.Email).Msg("admin provisioned")

	if !opts.Content {
		return nil
	}

	sample, err := LoadSample()
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replace(ctx, tx, []content.Bio{sample.Bio}); err != nil {
			return err
		}
		if err := replace(ctx, tx, sample.Skills); err != nil {
			return err
		}
		if err := replace(ctx, tx, sample.Experience); err != nil {
			return err
		}
		if err := replace(ctx, tx, sample.Education); err != nil {
			return err
		}
		return replace(ctx, tx, sample.Projects)
	})
	if err != nil {
		return fmt.Errorf("failed to seed content: %w", err)
	}

	log.Info().
		Int("skills", len(sample.Skills)).
		Int("experience", len(sample.Experience)).
		Int("education", len(sample.Education)).
		Int("projects", len(sample.Projects)).
		Msg("sample content loaded")
	return nil
}

func replace[T any](ctx context.Context, tx *gorm.DB, recs []T) error {
	s := store.New[T](tx, "")
	if err := s.DeleteAll(ctx); err != nil {
		return err
	}
	return s.CreateAll(ctx, recs)
}
