package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/models"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

type PipelineRepository interface {
	BaseRepository[models.Pipeline]
	// List returns pipelines newest first; an empty userID lists every owner's.
	List(ctx context.Context, userID string) ([]models.Pipeline, error)
	UpdateFields(ctx context.Context, id string, patch models.PipelinePatch) (*models.Pipeline, error)
	// DeleteCascade removes the pipeline with its companies and their analyses.
	DeleteCascade(ctx context.Context, id string) error
}

type pipelineRepository struct {
	BaseRepository[models.Pipeline]
	db *gorm.DB
}

func NewPipelineRepository(db *gorm.DB) PipelineRepository {
	return &pipelineRepository{BaseRepository: NewBaseRepository[models.Pipeline](db, "Pipeline"), db: db}
}

func (r *pipelineRepository) List(ctx context.Context, userID string) ([]models.Pipeline, error) {
	out := []models.Pipeline{}
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list pipelines failed")
	}
	return out, nil
}

func (r *pipelineRepository) UpdateFields(ctx context.Context, id string, patch models.PipelinePatch) (*models.Pipeline, error) {
	var p models.Pipeline
	if err := updateAndReload(ctx, r.db, "Pipeline", id, patch.Columns(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pipelineRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		companies := tx.Model(&models.Company{}).Select("id").Where("pipeline_id = ?", id)
		if err := tx.Where("company_id IN (?)", companies).Delete(&models.Analysis{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete pipeline analyses failed")
		}
		if err := tx.Where("pipeline_id = ?", id).Delete(&models.Company{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete pipeline companies failed")
		}
		if err := tx.Where("id = ?", id).Delete(&models.Pipeline{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete pipeline failed")
		}
		return nil
	})
}
