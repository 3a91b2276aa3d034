package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/testutil"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

func TestPipelineRepositoryCreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	p := &models.Pipeline{
		UserID:    "user-1",
		Name:      "FinTech",
		ArrMin:    ptr("1000000"),
		ArrMax:    ptr("5000000"),
		Locations: datatypes.JSONSlice[string]{},
		Tags:      datatypes.JSONSlice[string]{"Payments"},
	}
	require.NoError(t, repo.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	var got models.Pipeline
	require.NoError(t, repo.GetByID(ctx, p.ID, &got))
	assert.Equal(t, "FinTech", got.Name)
	assert.Equal(t, "1000000", *got.ArrMin)
	assert.Equal(t, "5000000", *got.ArrMax)
	assert.Nil(t, got.TeamMin)
	assert.Equal(t, []string{}, []string(got.Locations))
	assert.Equal(t, []string{"Payments"}, []string(got.Tags))
}

func TestPipelineRepositoryGetMissing(t *testing.T) {
	repo := NewPipelineRepository(testutil.NewDB(t))

	var got models.Pipeline
	err := repo.GetByID(context.Background(), "nope", &got)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	assert.Equal(t, "not_found: Pipeline not found", err.Error())
}

func TestPipelineRepositoryListOrderAndFilter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	older := testutil.SeedPipeline(t, db, "user-1", "Older")
	newer := testutil.SeedPipeline(t, db, "user-1", "Newer")
	other := testutil.SeedPipeline(t, db, "user-2", "Someone else")

	mine, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, other.ID, all[0].ID)

	none, err := repo.List(ctx, "user-3")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestPipelineRepositoryUpdateFields(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()
	p := testutil.SeedPipeline(t, db, "user-1", "Draft")
	_, err := repo.UpdateFields(ctx, p.ID, models.PipelinePatch{ArrMin: ptr("250000"), TeamMin: ptr(3)})
	require.NoError(t, err)

	updated, err := repo.UpdateFields(ctx, p.ID, models.PipelinePatch{
		Name:        ptr("Climate"),
		ClearArrMin: true,
		Tags:        &[]string{"Energy", "B2B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Climate", updated.Name)
	assert.Nil(t, updated.ArrMin)
	require.NotNil(t, updated.TeamMin)
	assert.Equal(t, 3, *updated.TeamMin)
	assert.Equal(t, []string{"Energy", "B2B"}, []string(updated.Tags))
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = repo.UpdateFields(ctx, "missing", models.PipelinePatch{Name: ptr("x")})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestPipelineRepositoryDeleteIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()
	p := testutil.SeedPipeline(t, db, "user-1", "Short lived")

	require.NoError(t, repo.Delete(ctx, p.ID))
	require.NoError(t, repo.Delete(ctx, p.ID))

	var got models.Pipeline
	assert.True(t, appErr.IsCode(repo.GetByID(ctx, p.ID, &got), appErr.CodeNotFound))
}

func TestPipelineRepositoryDeleteCascade(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPipelineRepository(db)
	ctx := context.Background()

	doomed := testutil.SeedPipeline(t, db, "user-1", "Doomed")
	kept := testutil.SeedPipeline(t, db, "user-1", "Kept")
	c1 := testutil.SeedCompany(t, db, "", doomed.ID, "Acme")
	c2 := testutil.SeedCompany(t, db, "", kept.ID, "Globex")
	testutil.SeedAnalysis(t, db, c1.ID, 80)
	testutil.SeedAnalysis(t, db, c2.ID, 90)

	require.NoError(t, repo.DeleteCascade(ctx, doomed.ID))

	var companies, analyses, pipelines int64
	require.NoError(t, db.Model(&models.Company{}).Count(&companies).Error)
	require.NoError(t, db.Model(&models.Analysis{}).Count(&analyses).Error)
	require.NoError(t, db.Model(&models.Pipeline{}).Count(&pipelines).Error)
	assert.Equal(t, int64(1), companies)
	assert.Equal(t, int64(1), analyses)
	assert.Equal(t, int64(1), pipelines)
}

func TestCompanyRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCompanyRepository(db)
	ctx := context.Background()
	p := testutil.SeedPipeline(t, db, "user-1", "SaaS")

	c := &models.Company{PipelineID: p.ID, Name: "Initech"}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, models.StatusResearching, c.Status)

	second := testutil.SeedCompany(t, db, "", p.ID, "Hooli")
	testutil.SeedCompany(t, db, "", "other-pipeline", "Elsewhere")

	list, err := repo.ListByPipeline(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// c was created with the real clock, after the seeded timestamps
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	status := models.StatusMeetingScheduled
	updated, err := repo.UpdateFields(ctx, c.ID, models.CompanyPatch{Status: &status, Notes: ptr("partner meeting Tuesday")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusMeetingScheduled, updated.Status)
	assert.Equal(t, "partner meeting Tuesday", *updated.Notes)
	assert.Equal(t, "Initech", updated.Name)

	testutil.SeedAnalysis(t, db, c.ID, 75)
	require.NoError(t, repo.DeleteCascade(ctx, c.ID))
	var analyses int64
	require.NoError(t, db.Model(&models.Analysis{}).Where("company_id = ?", c.ID).Count(&analyses).Error)
	assert.Zero(t, analyses)
}

func TestAnalysisRepositoryLatest(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	none, err := repo.GetLatestByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, none)

	testutil.SeedAnalysis(t, db, "c1", 71)
	latest := testutil.SeedAnalysis(t, db, "c1", 99)
	testutil.SeedAnalysis(t, db, "c2", 85)

	got, err := repo.GetLatestByCompany(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, 99, got.Score)

	history, err := repo.ListByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestProfileRepositoryUpsert(t *testing.T) {
	repo := NewProfileRepository(testutil.NewDB(t))
	ctx := context.Background()

	missing, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := repo.Upsert(ctx, &models.UserProfile{
		ID: "user-1", Email: "ada@example.com", FullName: "Ada", Timezone: "Europe/London",
	}, models.ProfileColumns)
	require.NoError(t, err)
	assert.Equal(t, "Ada", created.FullName)
	assert.False(t, created.WeeklyDigest)

	_, err = repo.Upsert(ctx, &models.UserProfile{
		ID: "user-1", Email: "ada@example.com", Timezone: "UTC", WeeklyDigest: true, EmailNotifications: true,
	}, models.NotificationColumns)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.FullName, "notification save must not clobber profile fields")
	assert.Equal(t, "Europe/London", got.Timezone)
	assert.True(t, got.WeeklyDigest)
	assert.True(t, got.EmailNotifications)
	assert.False(t, got.AnalysisCompleteNotifications)
}

func TestTranslatePostgresErrors(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"}
	err := translate(unique, "create failed")
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))
	assert.ErrorIs(t, err, unique)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_companies_pipeline"}
	assert.True(t, appErr.IsCode(translate(fk, "create failed"), appErr.CodeNotFound))

	other := errors.New("connection refused")
	err = translate(other, "create failed")
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	ae, _ := appErr.As(err)
	assert.Equal(t, "create failed", ae.Message)
}
