package seed_test

import (
	"context"
	"testing"

	"github.com/aTrapDeer/portfolio-backend/internal/auth"
	"github.com/aTrapDeer/portfolio-backend/internal/content"
	"github.com/aTrapDeer/portfolio-backend/internal/seed"
	"github.com/aTrapDeer/portfolio-backend/internal/store"
	"github.com/aTrapDeer/portfolio-backend/internal/testdb"
	"github.com/aTrapDeer/portfolio-backend/internal/validation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleIsValid(t *testing.T) {
	sample, err := seed.LoadSample()
	require.NoError(t, err)

	v := validation.New()
	require.NoError(t, v.Validate(&sample.Bio))
	for i := range sample.Skills {
		assert.NoError(t, v.Validate(&sample.Skills[i]), sample.Skills[i].Title)
		assert.Equal(t, i, sample.Skills[i].Order)
	}
	for i := range sample.Experience {
		assert.NoError(t, v.Validate(&sample.Experience[i]), sample.Experience[i].Role)
	}
	for i := range sample.Education {
		assert.NoError(t, v.Validate(&sample.Education[i]), sample.Education[i].School)
	}
	for i := range sample.Projects {
		assert.NoError(t, v.Validate(&sample.Projects[i]), sample.Projects[i].Title)
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	database := testdb.New(t, append([]any{&auth.Admin{}}, content.Models()...)...)

	opts := seed.Options{AdminEmail: "admin@example.com", AdminPassword: "admin123", Content: true}
	require.NoError(t, seed.Run(ctx, database, opts, zerolog.Nop()))

	admin, err := auth.NewRepository(database).GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("admin123"))
	assert.Equal(t, "Admin", admin.Name)

	skills := store.New[content.Skill](database, store.OrderBySequence)
	before, err := skills.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, before)
	assert.Equal(t, "Frontend", before[0].Title)

	bio, err := store.New[content.Bio](database, "").Get(ctx, content.BioID)
	require.NoError(t, err)
	assert.NotEmpty(t, bio.Name)

	t.Run("Rerun_ReplacesContent", func(t *testing.T) {
		require.NoError(t, seed.Run(ctx, database, opts, zerolog.Nop()))
		after, err := skills.List(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("AdminOnly_KeepsContent", func(t *testing.T) {
		require.NoError(t, seed.Run(ctx, database, seed.Options{AdminEmail: "admin@example.com", AdminPassword: "changed"}, zerolog.Nop()))
		n, err := skills.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, len(before), n)

		admin, err := auth.NewRepository(database).GetByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.True(t, admin.CheckPassword("changed"))
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		assert.Error(t, seed.Run(ctx, database, seed.Options{}, zerolog.Nop()))
	})
}
