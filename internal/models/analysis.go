package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Analysis is a stored research summary and score for a company. Several rows
// may exist per company; readers use the most recent one.
type Analysis struct {
	ID                   string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	CompanyID            string    `gorm:"type:varchar(64);index:idx_analyses_company_created;not null" json:"company_id" validate:"required"`
	Summary              string    `gorm:"type:text;not null" json:"summary" validate:"required"`
	Score                int       `gorm:"not null" json:"score" validate:"gte=0,lte=100"`
	MarketSize           *string   `json:"market_size,omitempty"`
	GrowthRate           *string   `json:"growth_rate,omitempty"`
	CompetitiveLandscape *string   `gorm:"type:text" json:"competitive_landscape,omitempty"`
	Risks                *string   `gorm:"type:text" json:"risks,omitempty"`
	Opportunities        *string   `gorm:"type:text" json:"opportunities,omitempty"`
	CreatedAt            time.Time `gorm:"index:idx_analyses_company_created" json:"created_at"`
}

// BeforeCreate assigns an id.
func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
