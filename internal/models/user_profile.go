package models

import (
	"time"
)

// UserProfile extends an identity-provider user with display fields and
// notification preferences. ID is the provider's subject.
type UserProfile struct {
	ID                            string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email                         string    `json:"email"`
	FullName                      string    `json:"full_name"`
	AvatarURL                     string    `json:"avatar_url"`
	Company                       string    `json:"company"`
	Role                          string    `json:"role"`
	Phone                         string    `json:"phone"`
	Timezone                      string    `gorm:"not null;default:UTC" json:"timezone"`
	EmailNotifications            bool      `gorm:"not null;default:false" json:"email_notifications"`
	AnalysisCompleteNotifications bool      `gorm:"not null;default:false" json:"analysis_complete_notifications"`
	NewCompaniesNotifications     bool      `gorm:"not null;default:false" json:"new_companies_notifications"`
	PipelineUpdatesNotifications  bool      `gorm:"not null;default:false" json:"pipeline_updates_notifications"`
	WeeklyDigest                  bool      `gorm:"not null;default:false" json:"weekly_digest"`
	CreatedAt                     time.Time `json:"created_at"`
	UpdatedAt                     time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (UserProfile) TableName() string { return "users" }

// Profile columns written by the two settings forms.
var (
	ProfileColumns      = []string{"email", "full_name", "company", "role", "phone", "timezone", "updated_at"}
	NotificationColumns = []string{
		"email",
		"email_notifications",
		"analysis_complete_notifications",
		"new_companies_notifications",
		"pipeline_updates_notifications",
		"weekly_digest",
		"updated_at",
	}
)
