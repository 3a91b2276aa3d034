//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/migrations"
	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/testutil"
	"github.com/dealflow-studio/engine/pkg/database"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
	"github.com/dealflow-studio/engine/pkg/logger"
)

func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if !logger.Initialized() {
		logger.Use(zap.NewNop())
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("dealflow"),
		tcpostgres.WithUsername("dealflow"),
		tcpostgres.WithPassword("dealflow"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	db, err := database.Open(openCtx, dsn, database.Options{MaxRetries: 5})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	// second run must be a no-op
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestPostgresRepositories(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	pipelines := NewPipelineRepository(db)
	companies := NewCompanyRepository(db)
	analyses := NewAnalysisRepository(db)
	profiles := NewProfileRepository(db)

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, database.Ping(ctx, db))
	})

	t.Run("foreign keys cascade", func(t *testing.T) {
		p := testutil.SeedPipeline(t, db, "pg-user", "Cascade")
		c := testutil.SeedCompany(t, db, "", p.ID, "Acme")
		testutil.SeedAnalysis(t, db, c.ID, 88)

		// bypass the repository transaction to exercise ON DELETE CASCADE
		require.NoError(t, db.Exec("DELETE FROM pipelines WHERE id = ?", p.ID).Error)

		var n int64
		require.NoError(t, db.Model(&models.Company{}).Where("pipeline_id = ?", p.ID).Count(&n).Error)
		assert.Zero(t, n)
		require.NoError(t, db.Model(&models.Analysis{}).Where("company_id = ?", c.ID).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("orphan company rejected", func(t *testing.T) {
		err := companies.Create(ctx, &models.Company{PipelineID: "no-such-pipeline", Name: "Ghost"})
		require.Error(t, err)
		assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		p := testutil.SeedPipeline(t, db, "pg-user", "Original")
		err := pipelines.Create(ctx, &models.Pipeline{ID: p.ID, UserID: "pg-user", Name: "Copy"})
		require.Error(t, err)
		assert.True(t, appErr.IsCode(err, appErr.CodeConflict))
	})

	t.Run("list newest first", func(t *testing.T) {
		older := testutil.SeedPipeline(t, db, "pg-lister", "Older")
		newer := testutil.SeedPipeline(t, db, "pg-lister", "Newer")

		list, err := pipelines.List(ctx, "pg-lister")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)
	})

	t.Run("latest analysis", func(t *testing.T) {
		p := testutil.SeedPipeline(t, db, "pg-user", "Scores")
		c := testutil.SeedCompany(t, db, "", p.ID, "Initech")
		testutil.SeedAnalysis(t, db, c.ID, 72)
		want := testutil.SeedAnalysis(t, db, c.ID, 96)

		got, err := analyses.GetLatestByCompany(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, want.ID, got.ID)
	})

	t.Run("profile upsert touches only listed columns", func(t *testing.T) {
		_, err := profiles.Upsert(ctx, &models.UserProfile{
			ID: "pg-profile", Email: "a@example.com", FullName: "Ada", Timezone: "UTC", WeeklyDigest: true,
		}, models.NotificationColumns)
		require.NoError(t, err)

		got, err := profiles.Upsert(ctx, &models.UserProfile{
			ID: "pg-profile", Email: "a@example.com", FullName: "Ada Lovelace", Timezone: "Europe/London",
		}, models.ProfileColumns)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", got.FullName)
		assert.Equal(t, "Europe/London", got.Timezone)
		assert.True(t, got.WeeklyDigest)
	})
}
