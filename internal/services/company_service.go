package services

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/repository"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
	"github.com/dealflow-studio/engine/pkg/logger"
)

// CompanyService manages companies inside pipelines. Access to a company is
// granted through ownership of the pipeline it belongs to.
type CompanyService interface {
	// CheckPipeline reports NotFound unless userID owns pipelineID.
	CheckPipeline(ctx context.Context, pipelineID, userID string) error
	ListCompanies(ctx context.Context, pipelineID, userID string) ([]models.Company, error)
	CreateCompany(ctx context.Context, pipelineID, userID string, input *CompanyInput) (*models.Company, error)
	GetCompany(ctx context.Context, companyID, userID string) (*models.Company, error)
	UpdateCompany(ctx context.Context, companyID, userID string, patch models.CompanyPatch) (*models.Company, error)
	DeleteCompany(ctx context.Context, companyID, userID string) error
}

type CompanyInput struct {
	Name        string
	Arr         *string
	TeamSize    *int
	Location    *string
	Description *string
	Website     *string
	Status      *models.CompanyStatus
	Notes       *string
}

type companyService struct {
	pipelineRepo repository.PipelineRepository
	companyRepo  repository.CompanyRepository
}

func NewCompanyService(pipelineRepo repository.PipelineRepository, companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{pipelineRepo: pipelineRepo, companyRepo: companyRepo}
}

var _ CompanyService = (*companyService)(nil)

func (s *companyService) CheckPipeline(ctx context.Context, pipelineID, userID string) error {
	_, err := ownedPipeline(ctx, s.pipelineRepo, pipelineID, userID)
	return err
}

func (s *companyService) ListCompanies(ctx context.Context, pipelineID, userID string) ([]models.Company, error) {
	if _, err := ownedPipeline(ctx, s.pipelineRepo, pipelineID, userID); err != nil {
		return nil, err
	}
	return s.companyRepo.ListByPipeline(ctx, pipelineID)
}

func (s *companyService) CreateCompany(ctx context.Context, pipelineID, userID string, input *CompanyInput) (*models.Company, error) {
	if _, err := ownedPipeline(ctx, s.pipelineRepo, pipelineID, userID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, appErr.Invalid("name", "Company name is required")
	}
	if err := checkCompanyFields(input.Arr, input.TeamSize, input.Status); err != nil {
		return nil, err
	}

	c := &models.Company{
		PipelineID:  pipelineID,
		Name:        name,
		Arr:         input.Arr,
		TeamSize:    input.TeamSize,
		Location:    input.Location,
		Description: input.Description,
		Website:     input.Website,
		Notes:       input.Notes,
	}
	if input.Status != nil {
		c.Status = *input.Status
	}
	if err := s.companyRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.L().Info("company created",
		zap.String("company_id", c.ID),
		zap.String("pipeline_id", pipelineID),
		zap.String("user_id", userID))
	return c, nil
}

func (s *companyService) GetCompany(ctx context.Context, companyID, userID string) (*models.Company, error) {
	return s.ownedCompany(ctx, companyID, userID)
}

func (s *companyService) UpdateCompany(ctx context.Context, companyID, userID string, patch models.CompanyPatch) (*models.Company, error) {
	if _, err := s.ownedCompany(ctx, companyID, userID); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, appErr.Invalid("name", "Company name is required")
		}
		patch.Name = &name
	}
	if err := checkCompanyFields(patch.Arr, patch.TeamSize, patch.Status); err != nil {
		return nil, err
	}

	c, err := s.companyRepo.UpdateFields(ctx, companyID, patch)
	if err != nil {
		return nil, err
	}
	logger.L().Info("company updated", zap.String("company_id", companyID), zap.String("user_id", userID))
	return c, nil
}

// DeleteCompany removes the company and its analyses.
func (s *companyService) DeleteCompany(ctx context.Context, companyID, userID string) error {
	if _, err := s.ownedCompany(ctx, companyID, userID); err != nil {
		return err
	}
	if err := s.companyRepo.DeleteCascade(ctx, companyID); err != nil {
		return err
	}
	logger.L().Info("company deleted", zap.String("company_id", companyID), zap.String("user_id", userID))
	return nil
}

// ownedCompany loads a company whose pipeline belongs to userID. Missing
// company, missing pipeline and foreign pipeline all read as "Company not found".
func (s *companyService) ownedCompany(ctx context.Context, companyID, userID string) (*models.Company, error) {
	if userID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	var c models.Company
	if err := s.companyRepo.GetByID(ctx, companyID, &c); err != nil {
		return nil, err
	}
	if _, err := ownedPipeline(ctx, s.pipelineRepo, c.PipelineID, userID); err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			return nil, appErr.NotFound("Company")
		}
		return nil, err
	}
	return &c, nil
}

func checkCompanyFields(arr *string, teamSize *int, status *models.CompanyStatus) error {
	if arr != nil {
		if v, err := strconv.ParseFloat(*arr, 64); err != nil || v < 0 {
			return appErr.Invalid("arr", "arr must be a non-negative number")
		}
	}
	if teamSize != nil && *teamSize < 0 {
		return appErr.Invalid("teamSize", "teamSize must not be negative")
	}
	if status != nil && !status.Valid() {
		return appErr.Invalid("status", "status must be one of researching, contacted, meeting_scheduled, passed, invested")
	}
	return nil
}
