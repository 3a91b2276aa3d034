package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyStatus is the stage a company has reached in a pipeline.
type CompanyStatus string

const (
	StatusResearching      CompanyStatus = "researching"
	StatusContacted        CompanyStatus = "contacted"
	StatusMeetingScheduled CompanyStatus = "meeting_scheduled"
	StatusPassed           CompanyStatus = "passed"
	StatusInvested         CompanyStatus = "invested"
)

// CompanyStatuses lists the allowed statuses in lifecycle order.
var CompanyStatuses = []CompanyStatus{
	StatusResearching,
	StatusContacted,
	StatusMeetingScheduled,
	StatusPassed,
	StatusInvested,
}

// Valid reports whether s is one of CompanyStatuses.
func (s CompanyStatus) Valid() bool {
	for _, v := range CompanyStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Company is a candidate investment target tracked within a pipeline.
type Company struct {
	ID          string        `gorm:"type:varchar(64);primaryKey" json:"id"`
	PipelineID  string        `gorm:"type:varchar(64);index;not null" json:"pipeline_id" validate:"required"`
	Name        string        `gorm:"not null" json:"name" validate:"required"`
	Arr         *string       `gorm:"type:varchar(32)" json:"arr"`
	TeamSize    *int          `json:"team_size"`
	Location    *string       `json:"location"`
	Description *string       `gorm:"type:text" json:"description"`
	Website     *string       `json:"website"`
	Status      CompanyStatus `gorm:"type:varchar(32);index;not null;default:researching" json:"status" validate:"required,oneof=researching contacted meeting_scheduled passed invested"`
	Notes       *string       `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BeforeCreate assigns an id and the default status.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusResearching
	}
	return nil
}

// CompanyPatch is a partial company update; nil fields are left untouched.
type CompanyPatch struct {
	Name        *string
	Arr         *string
	TeamSize    *int
	Location    *string
	Description *string
	Website     *string
	Status      *CompanyStatus
	Notes       *string

	ClearArr         bool
	ClearTeamSize    bool
	ClearLocation    bool
	ClearDescription bool
	ClearWebsite     bool
	ClearNotes       bool
}

// Columns converts the patch into a gorm column map.
func (p CompanyPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	setNullable(cols, "arr", p.Arr, p.ClearArr)
	setNullable(cols, "team_size", p.TeamSize, p.ClearTeamSize)
	setNullable(cols, "location", p.Location, p.ClearLocation)
	setNullable(cols, "description", p.Description, p.ClearDescription)
	setNullable(cols, "website", p.Website, p.ClearWebsite)
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	setNullable(cols, "notes", p.Notes, p.ClearNotes)
	return cols
}
