package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/internal/models"
	"github.com/dealflow-studio/engine/internal/repository"
	appErr "github.com/dealflow-studio/engine/pkg/errors"
	"github.com/dealflow-studio/engine/pkg/logger"
)

// Placeholder research texts stored with every synthesized analysis.
const (
	analysisMarketSize           = "$10B - $50B"
	analysisGrowthRate           = "15-25%"
	analysisCompetitiveLandscape = "Moderate competition with clear differentiation opportunities"
	analysisRisks                = "Market saturation, regulatory changes, economic downturn"
	analysisOpportunities        = "International expansion, product diversification, strategic partnerships"
	analysisSummarySuffix        = " shows promising market potential with strong growth indicators and competitive positioning in their sector."

	MinAnalysisScore = 70
	MaxAnalysisScore = 100
)

// Scorer yields a score in [MinAnalysisScore, MaxAnalysisScore].
type Scorer func() int

// RandomScorer draws scores uniformly from the allowed range.
func RandomScorer() int {
	return MinAnalysisScore + rand.IntN(MaxAnalysisScore-MinAnalysisScore+1)
}

// AnalysisService produces and reads company analyses. Real research is out of
// scope; RunAnalysis stores a synthesized placeholder.
type AnalysisService interface {
	// RunAnalysis returns the stored analysis when one exists (created=false),
	// otherwise synthesizes, stores and returns a new one (created=true).
	RunAnalysis(ctx context.Context, userID string, input *RunAnalysisInput) (analysis *models.Analysis, created bool, err error)
	LatestAnalysis(ctx context.Context, companyID, userID string) (*models.Analysis, error)
}

type RunAnalysisInput struct {
	CompanyID   string
	CompanyName string
}

type analysisService struct {
	companies    CompanyService
	analysisRepo repository.AnalysisRepository
	score        Scorer
}

// NewAnalysisService wires the service; a nil scorer uses RandomScorer.
func NewAnalysisService(companies CompanyService, analysisRepo repository.AnalysisRepository, score Scorer) AnalysisService {
	if score == nil {
		score = RandomScorer
	}
	return &analysisService{companies: companies, analysisRepo: analysisRepo, score: score}
}

var _ AnalysisService = (*analysisService)(nil)

func (s *analysisService) RunAnalysis(ctx context.Context, userID string, input *RunAnalysisInput) (*models.Analysis, bool, error) {
	companyID := strings.TrimSpace(input.CompanyID)
	if companyID == "" {
		return nil, false, appErr.Invalid("companyId", "Company ID is required")
	}
	company, err := s.companies.GetCompany(ctx, companyID, userID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.analysisRepo.GetLatestByCompany(ctx, companyID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	name := strings.TrimSpace(input.CompanyName)
	if name == "" {
		name = strings.TrimSpace(company.Name)
	}
	if name == "" {
		name = "This company"
	}

	score := min(max(s.score(), MinAnalysisScore), MaxAnalysisScore)
	a := &models.Analysis{
		CompanyID:            companyID,
		Summary:              name + analysisSummarySuffix,
		Score:                score,
		MarketSize:           strPtr(analysisMarketSize),
		GrowthRate:           strPtr(analysisGrowthRate),
		CompetitiveLandscape: strPtr(analysisCompetitiveLandscape),
		Risks:                strPtr(analysisRisks),
		Opportunities:        strPtr(analysisOpportunities),
	}
	if err := s.analysisRepo.Create(ctx, a); err != nil {
		return nil, false, err
	}

	logger.L().Info("analysis created",
		zap.String("analysis_id", a.ID),
		zap.String("company_id", companyID),
		zap.Int("score", score))
	return a, true, nil
}

func (s *analysisService) LatestAnalysis(ctx context.Context, companyID, userID string) (*models.Analysis, error) {
	if _, err := s.companies.GetCompany(ctx, companyID, userID); err != nil {
		return nil, err
	}
	a, err := s.analysisRepo.GetLatestByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, appErr.NotFound("Analysis")
	}
	return a, nil
}

func strPtr(s string) *string { return &s }
