// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/migrations"
	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/pkg/database"
	"github.com/dealflow-studio/engine/pkg/logger"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	if !logger.Initialized() {
		logger.Use(zap.NewNop())
	}
	db, err := database.OpenSQLite(context.Background(), ":memory:", database.Options{})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, migrations.Run(db), "migrate sqlite")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedPipeline inserts a pipeline owned by userID. Successive calls get
// increasing created_at values so ordering assertions are stable.
func SeedPipeline(t *testing.T, db *gorm.DB, userID, name string) *models.Pipeline {
	t.Helper()
	p := &models.Pipeline{
		UserID:    userID,
		Name:      name,
		Locations: datatypes.JSONSlice[string]{},
		Tags:      datatypes.JSONSlice[string]{},
		CreatedAt: nextTimestamp(),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// SeedCompany inserts a company into pipelineID. An empty id is generated.
func SeedCompany(t *testing.T, db *gorm.DB, id, pipelineID, name string) *models.Company {
	t.Helper()
	c := &models.Company{ID: id, PipelineID: pipelineID, Name: name, CreatedAt: nextTimestamp()}
	require.NoError(t, db.Create(c).Error)
	return c
}

// SeedAnalysis inserts an analysis for companyID.
func SeedAnalysis(t *testing.T, db *gorm.DB, companyID string, score int) *models.Analysis {
	t.Helper()
	a := &models.Analysis{CompanyID: companyID, Summary: "seeded", Score: score, CreatedAt: nextTimestamp()}
	require.NoError(t, db.Create(a).Error)
	return a
}

var (
	clockMu sync.Mutex
	clock   = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
)

func nextTimestamp() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	clock = clock.Add(time.Minute)
	return clock
}
