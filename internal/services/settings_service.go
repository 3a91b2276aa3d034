package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/internal/identity"
	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/repository"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
	"github.com/dealflow-studio/engine/pkg/logger"
)

const defaultTimezone = "UTC"

// SettingsService reads and saves the caller's profile and notification
// preferences. The two forms are saved independently and never overwrite
// each other's columns.
type SettingsService interface {
	GetSettings(ctx context.Context, principal *identity.Principal) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, principal *identity.Principal, input *ProfileInput) (*models.UserProfile, error)
	SaveNotifications(ctx context.Context, principal *identity.Principal, input *NotificationsInput) (*models.UserProfile, error)
}

type ProfileInput struct {
	FullName string
	Company  string
	Role     string
	Phone    string
	Timezone string
}

type NotificationsInput struct {
	EmailNotifications            bool
	AnalysisCompleteNotifications bool
	NewCompaniesNotifications     bool
	PipelineUpdatesNotifications  bool
	WeeklyDigest                  bool
}

type settingsService struct {
	profileRepo repository.ProfileRepository
}

func NewSettingsService(profileRepo repository.ProfileRepository) SettingsService {
	return &settingsService{profileRepo: profileRepo}
}

var _ SettingsService = (*settingsService)(nil)

// GetSettings returns the stored profile, or one derived from the identity
// provider's metadata when the user has never saved settings.
func (s *settingsService) GetSettings(ctx context.Context, principal *identity.Principal) (*models.UserProfile, error) {
	if principal == nil || principal.ID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	stored, err := s.profileRepo.Get(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		if stored.Timezone == "" {
			stored.Timezone = defaultTimezone
		}
		return stored, nil
	}
	return profileFromPrincipal(principal), nil
}

func (s *settingsService) SaveProfile(ctx context.Context, principal *identity.Principal, input *ProfileInput) (*models.UserProfile, error) {
	if principal == nil || principal.ID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	tz := strings.TrimSpace(input.Timezone)
	if tz == "" {
		tz = defaultTimezone
	}
	profile := &models.UserProfile{
		ID:        principal.ID,
		Email:     principal.Email,
		FullName:  strings.TrimSpace(input.FullName),
		Company:   strings.TrimSpace(input.Company),
		Role:      strings.TrimSpace(input.Role),
		Phone:     strings.TrimSpace(input.Phone),
		Timezone:  tz,
		UpdatedAt: time.Now().UTC(),
	}
	saved, err := s.profileRepo.Upsert(ctx, profile, models.ProfileColumns)
	if err != nil {
		return nil, err
	}
	logger.L().Info("profile saved", zap.String("user_id", principal.ID))
	return saved, nil
}

func (s *settingsService) SaveNotifications(ctx context.Context, principal *identity.Principal, input *NotificationsInput) (*models.UserProfile, error) {
	if principal == nil || principal.ID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	profile := profileFromPrincipal(principal)
	profile.EmailNotifications = input.EmailNotifications
	profile.AnalysisCompleteNotifications = input.AnalysisCompleteNotifications
	profile.NewCompaniesNotifications = input.NewCompaniesNotifications
	profile.PipelineUpdatesNotifications = input.PipelineUpdatesNotifications
	profile.WeeklyDigest = input.WeeklyDigest
	profile.UpdatedAt = time.Now().UTC()

	// a first save seeds the profile columns from the identity provider
	saved, err := s.profileRepo.Upsert(ctx, profile, models.NotificationColumns)
	if err != nil {
		return nil, err
	}
	logger.L().Info("notification preferences saved", zap.String("user_id", principal.ID))
	return saved, nil
}

func profileFromPrincipal(p *identity.Principal) *models.UserProfile {
	tz := p.MetadataString("timezone")
	if tz == "" {
		tz = defaultTimezone
	}
	return &models.UserProfile{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.MetadataString("full_name"),
		AvatarURL: p.MetadataString("avatar_url"),
		Company:   p.MetadataString("company"),
		Role:      p.MetadataString("role"),
		Phone:     p.MetadataString("phone"),
		Timezone:  tz,
	}
}
