package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/models"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

type CompanyRepository interface {
	BaseRepository[models.Company]
	ListByPipeline(ctx context.Context, pipelineID string) ([]models.Company, error)
	UpdateFields(ctx context.Context, id string, patch models.CompanyPatch) (*models.Company, error)
	DeleteCascade(ctx context.Context, id string) error
}

type companyRepository struct {
	BaseRepository[models.Company]
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{BaseRepository: NewBaseRepository[models.Company](db, "Company"), db: db}
}

func (r *companyRepository) ListByPipeline(ctx context.Context, pipelineID string) ([]models.Company, error) {
	out := []models.Company{}
	if err := r.db.WithContext(ctx).Where("pipeline_id = ?", pipelineID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list companies failed")
	}
	return out, nil
}

func (r *companyRepository) UpdateFields(ctx context.Context, id string, patch models.CompanyPatch) (*models.Company, error) {
	var c models.Company
	if err := updateAndReload(ctx, r.db, "Company", id, patch.Columns(), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("company_id = ?", id).Delete(&models.Analysis{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete company analyses failed")
		}
		if err := tx.Where("id = ?", id).Delete(&models.Company{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete company failed")
		}
		return nil
	})
}
