package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pipeline is a saved set of investment search criteria owned by one user.
type Pipeline struct {
	ID        string                     `gorm:"type:varchar(64);primaryKey" json:"id"`
	UserID    string                     `gorm:"type:varchar(64);index;not null" json:"user_id" validate:"required"`
	Name      string                     `gorm:"not null" json:"name" validate:"required"`
	ArrMin    *string                    `gorm:"type:varchar(32)" json:"arr_min"`
	ArrMax    *string                    `gorm:"type:varchar(32)" json:"arr_max"`
	TeamMin   *int                       `json:"team_min"`
	TeamMax   *int                       `json:"team_max"`
	Locations datatypes.JSONSlice[string] `gorm:"not null" json:"locations"`
	Tags      datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	CreatedAt time.Time                  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// BeforeCreate assigns an id and never lets list columns be stored as null.
func (p *Pipeline) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.normalize()
	return nil
}

// AfterFind keeps rows written by other clients from surfacing null lists.
func (p *Pipeline) AfterFind(tx *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Pipeline) normalize() {
	if p.Locations == nil {
		p.Locations = datatypes.JSONSlice[string]{}
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
}

// OwnedBy reports whether userID is the owner.
func (p *Pipeline) OwnedBy(userID string) bool {
	return userID != "" && p.UserID == userID
}

// PipelinePatch lists the columns an update writes. A nil pointer leaves the
// column unchanged; ClearX flags write NULL.
type PipelinePatch struct {
	Name      *string
	ArrMin    *string
	ArrMax    *string
	TeamMin   *int
	TeamMax   *int
	Locations *[]string
	Tags      *[]string

	ClearArrMin  bool
	ClearArrMax  bool
	ClearTeamMin bool
	ClearTeamMax bool
}

// Columns converts the patch into a gorm column map.
func (p PipelinePatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	setNullable(cols, "arr_min", p.ArrMin, p.ClearArrMin)
	setNullable(cols, "arr_max", p.ArrMax, p.ClearArrMax)
	setNullable(cols, "team_min", p.TeamMin, p.ClearTeamMin)
	setNullable(cols, "team_max", p.TeamMax, p.ClearTeamMax)
	if p.Locations != nil {
		cols["locations"] = datatypes.NewJSONSlice(nonNil(*p.Locations))
	}
	if p.Tags != nil {
		cols["tags"] = datatypes.NewJSONSlice(nonNil(*p.Tags))
	}
	return cols
}

func setNullable[T any](cols map[string]any, name string, v *T, clear bool) {
	switch {
	case v != nil:
		cols[name] = *v
	case clear:
		cols[name] = nil
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
