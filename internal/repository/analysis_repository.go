package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dealflow-studio/engine/internal/models"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

type AnalysisRepository interface {
	BaseRepository[models.Analysis]
	// GetLatestByCompany returns the newest analysis, or nil without error when
	// the company has none.
	GetLatestByCompany(ctx context.Context, companyID string) (*models.Analysis, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Analysis, error)
}

type analysisRepository struct {
	BaseRepository[models.Analysis]
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{BaseRepository: NewBaseRepository[models.Analysis](db, "Analysis"), db: db}
}

func (r *analysisRepository) GetLatestByCompany(ctx context.Context, companyID string) (*models.Analysis, error) {
	var a models.Analysis
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Limit(1).Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get latest analysis failed")
	}
	return &a, nil
}

func (r *analysisRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Analysis, error) {
	out := []models.Analysis{}
	if err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list analyses failed")
	}
	return out, nil
}
