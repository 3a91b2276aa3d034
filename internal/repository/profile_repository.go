package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dealflow-studio/engine/internal/models"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

type ProfileRepository interface {
	// Get returns the stored profile, or nil without error when none exists.
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Upsert inserts the profile or, on id conflict, overwrites only columns.
	Upsert(ctx context.Context, profile *models.UserProfile, columns []string) (*models.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get user profile failed")
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.UserProfile, columns []string) (*models.UserProfile, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(profile).Error
	if err != nil {
		return nil, translate(err, "upsert user profile failed")
	}

	var out models.UserProfile
	if err := r.db.WithContext(ctx).Where("id = ?", profile.ID).Take(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "reload user profile failed")
	}
	return &out, nil
}
