package services

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/repository"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
	"github.com/dealflow-studio/engine/pkg/logger"
)

// PipelineService owns pipeline CRUD. Every call is scoped to the caller:
// a pipeline owned by someone else is reported exactly like a missing one.
type PipelineService interface {
	ListPipelines(ctx context.Context, userID string) ([]models.Pipeline, error)
	CreatePipeline(ctx context.Context, userID string, input *PipelineInput) (*models.Pipeline, error)
	GetPipeline(ctx context.Context, pipelineID, userID string) (*models.Pipeline, error)
	UpdatePipeline(ctx context.Context, pipelineID, userID string, input *PipelineInput) (*models.Pipeline, error)
	DeletePipeline(ctx context.Context, pipelineID, userID string) error
}

// PipelineInput carries already-parsed pipeline criteria. Nil means absent.
type PipelineInput struct {
	Name      string
	ArrMin    *string
	ArrMax    *string
	TeamMin   *int
	TeamMax   *int
	Locations []string
	Tags      []string
}

// validate trims the name and checks the criteria ranges.
func (in *PipelineInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return appErr.Invalid("name", "Pipeline name is required")
	}
	if err := checkArrRange(in.ArrMin, in.ArrMax); err != nil {
		return err
	}
	if in.TeamMin != nil && *in.TeamMin < 0 {
		return appErr.Invalid("teamMin", "teamMin must not be negative")
	}
	if in.TeamMax != nil && *in.TeamMax < 0 {
		return appErr.Invalid("teamMax", "teamMax must not be negative")
	}
	if in.TeamMin != nil && in.TeamMax != nil && *in.TeamMax < *in.TeamMin {
		return appErr.Invalid("teamMax", "teamMax must be greater than or equal to teamMin")
	}
	in.Locations = cleanList(in.Locations)
	in.Tags = cleanList(in.Tags)
	return nil
}

func checkArrRange(lo, hi *string) error {
	var minV, maxV float64
	var err error
	if lo != nil {
		if minV, err = strconv.ParseFloat(*lo, 64); err != nil || minV < 0 {
			return appErr.Invalid("arrMin", "arrMin must be a non-negative number")
		}
	}
	if hi != nil {
		if maxV, err = strconv.ParseFloat(*hi, 64); err != nil || maxV < 0 {
			return appErr.Invalid("arrMax", "arrMax must be a non-negative number")
		}
	}
	if lo != nil && hi != nil && maxV < minV {
		return appErr.Invalid("arrMax", "arrMax must be greater than or equal to arrMin")
	}
	return nil
}

// cleanList trims entries and drops blanks and repeats.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

type pipelineService struct {
	pipelineRepo repository.PipelineRepository
}

func NewPipelineService(pipelineRepo repository.PipelineRepository) PipelineService {
	return &pipelineService{pipelineRepo: pipelineRepo}
}

var _ PipelineService = (*pipelineService)(nil)

func (s *pipelineService) ListPipelines(ctx context.Context, userID string) ([]models.Pipeline, error) {
	if userID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	return s.pipelineRepo.List(ctx, userID)
}

func (s *pipelineService) CreatePipeline(ctx context.Context, userID string, input *PipelineInput) (*models.Pipeline, error) {
	if userID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	p := &models.Pipeline{
		UserID:    userID,
		Name:      input.Name,
		ArrMin:    input.ArrMin,
		ArrMax:    input.ArrMax,
		TeamMin:   input.TeamMin,
		TeamMax:   input.TeamMax,
		Locations: datatypes.NewJSONSlice(input.Locations),
		Tags:      datatypes.NewJSONSlice(input.Tags),
	}
	if err := s.pipelineRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("pipeline created", zap.String("pipeline_id", p.ID), zap.String("user_id", userID))
	return p, nil
}

func (s *pipelineService) GetPipeline(ctx context.Context, pipelineID, userID string) (*models.Pipeline, error) {
	return ownedPipeline(ctx, s.pipelineRepo, pipelineID, userID)
}

// UpdatePipeline replaces the criteria: fields absent from input are cleared.
func (s *pipelineService) UpdatePipeline(ctx context.Context, pipelineID, userID string, input *PipelineInput) (*models.Pipeline, error) {
	if _, err := ownedPipeline(ctx, s.pipelineRepo, pipelineID, userID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	patch := models.PipelinePatch{
		Name:         &input.Name,
		ArrMin:       input.ArrMin,
		ArrMax:       input.ArrMax,
		TeamMin:      input.TeamMin,
		TeamMax:      input.TeamMax,
		Locations:    &input.Locations,
		Tags:         &input.Tags,
		ClearArrMin:  input.ArrMin == nil,
		ClearArrMax:  input.ArrMax == nil,
		ClearTeamMin: input.TeamMin == nil,
		ClearTeamMax: input.TeamMax == nil,
	}
	p, err := s.pipelineRepo.UpdateFields(ctx, pipelineID, patch)
	if err != nil {
		return nil, err
	}

	logger.L().Info("pipeline updated", zap.String("pipeline_id", pipelineID), zap.String("user_id", userID))
	return p, nil
}

// DeletePipeline removes the pipeline together with its companies and analyses.
func (s *pipelineService) DeletePipeline(ctx context.Context, pipelineID, userID string) error {
	if _, err := ownedPipeline(ctx, s.pipelineRepo, pipelineID, userID); err != nil {
		return err
	}
	if err := s.pipelineRepo.DeleteCascade(ctx, pipelineID); err != nil {
		return err
	}
	logger.L().Info("pipeline deleted", zap.String("pipeline_id", pipelineID), zap.String("user_id", userID))
	return nil
}

// ownedPipeline loads a pipeline and hides it from everyone but its owner.
func ownedPipeline(ctx context.Context, repo repository.PipelineRepository, pipelineID, userID string) (*models.Pipeline, error) {
	if userID == "" {
		return nil, appErr.New(appErr.CodeUnauthorized, "Unauthorized")
	}
	var p models.Pipeline
	if err := repo.GetByID(ctx, pipelineID, &p); err != nil {
		return nil, err
	}
	if !p.OwnedBy(userID) {
		logger.L().Debug("pipeline ownership mismatch", zap.String("pipeline_id", pipelineID), zap.String("user_id", userID))
		return nil, appErr.NotFound("Pipeline")
	}
	return &p, nil
}
