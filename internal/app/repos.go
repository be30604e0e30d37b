package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	Assessment      repos.AssessmentRepo
	LegacyEntry     repos.LegacyEntryRepo
	PlanAnalysis    repos.PlanAnalysisRepo
	Recommendation  repos.RecommendationRepo
	ScheduledAction repos.ScheduledActionRepo
	Intervention    repos.InterventionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Assessment:      repos.NewAssessmentRepo(db, log),
		LegacyEntry:     repos.NewLegacyEntryRepo(db, log),
		PlanAnalysis:    repos.NewPlanAnalysisRepo(db, log),
		Recommendation:  repos.NewRecommendationRepo(db, log),
		ScheduledAction: repos.NewScheduledActionRepo(db, log),
		Intervention:    repos.NewInterventionRepo(db, log),
	}
}
