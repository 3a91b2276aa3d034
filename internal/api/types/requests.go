package types

import (
	"strings"

	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/services"
)

// PipelineRequest is the body of POST /pipelines and PUT /pipelines/{id}.
type PipelineRequest struct {
	Name      string     `json:"name" validate:"max=200"`
	ArrMin    NumberText `json:"arrMin"`
	ArrMax    NumberText `json:"arrMax"`
	TeamMin   NumberText `json:"teamMin"`
	TeamMax   NumberText `json:"teamMax"`
	Locations []string   `json:"locations" validate:"max=50,dive,max=100"`
	Tags      []string   `json:"tags" validate:"max=50,dive,max=100"`
}

// Input converts the request into service input, rejecting malformed numbers.
func (r *PipelineRequest) Input() (*services.PipelineInput, error) {
	in := &services.PipelineInput{Name: r.Name, Locations: r.Locations, Tags: r.Tags}
	var err error
	if in.ArrMin, err = r.ArrMin.Text("arrMin"); err != nil {
		return nil, err
	}
	if in.ArrMax, err = r.ArrMax.Text("arrMax"); err != nil {
		return nil, err
	}
	if in.TeamMin, err = r.TeamMin.Int("teamMin"); err != nil {
		return nil, err
	}
	if in.TeamMax, err = r.TeamMax.Int("teamMax"); err != nil {
		return nil, err
	}
	return in, nil
}

// CompanyCreateRequest is the body of POST /pipelines/{id}/companies.
type CompanyCreateRequest struct {
	Name        string     `json:"name" validate:"max=200"`
	Arr         NumberText `json:"arr"`
	TeamSize    NumberText `json:"teamSize"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Website     *string    `json:"website" validate:"omitempty,max=500"`
	Status      *string    `json:"status" validate:"omitempty,max=32"`
	Notes       *string    `json:"notes" validate:"omitempty,max=10000"`
}

func (r *CompanyCreateRequest) Input() (*services.CompanyInput, error) {
	in := &services.CompanyInput{
		Name:        r.Name,
		Location:    optionalText(r.Location),
		Description: optionalText(r.Description),
		Website:     optionalText(r.Website),
		Notes:       optionalText(r.Notes),
		Status:      optionalStatus(r.Status),
	}
	var err error
	if in.Arr, err = r.Arr.Text("arr"); err != nil {
		return nil, err
	}
	if in.TeamSize, err = r.TeamSize.Int("teamSize"); err != nil {
		return nil, err
	}
	return in, nil
}

// CompanyUpdateRequest is the body of PUT /companies/{id}. Omitted keys are
// left untouched. arr and teamSize are cleared by null or ""; text fields by
// a blank string.
type CompanyUpdateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Arr         NumberText `json:"arr"`
	TeamSize    NumberText `json:"teamSize"`
	Location    *string    `json:"location" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Website     *string    `json:"website" validate:"omitempty,max=500"`
	Status      *string    `json:"status" validate:"omitempty,max=32"`
	Notes       *string    `json:"notes" validate:"omitempty,max=10000"`
}

func (r *CompanyUpdateRequest) Patch() (models.CompanyPatch, error) {
	patch := models.CompanyPatch{
		Name:          r.Name,
		Status:        optionalStatus(r.Status),
		ClearArr:      r.Arr.Cleared(),
		ClearTeamSize: r.TeamSize.Cleared(),
	}
	patch.Location, patch.ClearLocation = patchText(r.Location)
	patch.Description, patch.ClearDescription = patchText(r.Description)
	patch.Website, patch.ClearWebsite = patchText(r.Website)
	patch.Notes, patch.ClearNotes = patchText(r.Notes)
	var err error
	if patch.Arr, err = r.Arr.Text("arr"); err != nil {
		return patch, err
	}
	if patch.TeamSize, err = r.TeamSize.Int("teamSize"); err != nil {
		return patch, err
	}
	return patch, nil
}

// RunAnalysisRequest is the body of POST /run-analysis.
type RunAnalysisRequest struct {
	CompanyID   string `json:"companyId" validate:"max=64"`
	CompanyName string `json:"companyName" validate:"max=200"`
}

func (r *RunAnalysisRequest) Input() *services.RunAnalysisInput {
	return &services.RunAnalysisInput{CompanyID: r.CompanyID, CompanyName: r.CompanyName}
}

// ProfileRequest is the body of PUT /settings/profile.
type ProfileRequest struct {
	FullName string `json:"fullName" validate:"max=200"`
	Company  string `json:"company" validate:"max=200"`
	Role     string `json:"role" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=50"`
	Timezone string `json:"timezone" validate:"max=64"`
}

func (r *ProfileRequest) Input() *services.ProfileInput {
	return &services.ProfileInput{
		FullName: r.FullName,
		Company:  r.Company,
		Role:     r.Role,
		Phone:    r.Phone,
		Timezone: r.Timezone,
	}
}

// NotificationsRequest is the body of PUT /settings/notifications.
type NotificationsRequest struct {
	EmailNotifications bool `json:"emailNotifications"`
	AnalysisComplete   bool `json:"analysisComplete"`
	NewCompanies       bool `json:"newCompanies"`
	PipelineUpdates    bool `json:"pipelineUpdates"`
	WeeklyDigest       bool `json:"weeklyDigest"`
}

func (r *NotificationsRequest) Input() *services.NotificationsInput {
	return &services.NotificationsInput{
		EmailNotifications:            r.EmailNotifications,
		AnalysisCompleteNotifications: r.AnalysisComplete,
		NewCompaniesNotifications:     r.NewCompanies,
		PipelineUpdatesNotifications:  r.PipelineUpdates,
		WeeklyDigest:                  r.WeeklyDigest,
	}
}

// optionalText maps blank strings to nil so empty form inputs store NULL.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// patchText trims a sent text field; a blank value clears the column.
func patchText(s *string) (*string, bool) {
	if s == nil {
		return nil, false
	}
	t := optionalText(s)
	return t, t == nil
}

func optionalStatus(s *string) *models.CompanyStatus {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	st := models.CompanyStatus(strings.TrimSpace(*s))
	return &st
}
