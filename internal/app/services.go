package app

import (
	redisclient "github.com/yungbote/lifepillar-backend/internal/clients/redis"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/services"
)

type Services struct {
	Writer   services.AssessmentWriter
	Reader   services.AssessmentReader
	Migrator services.LegacyMigrator
	Auditor  services.IntegrityAuditor
	Pipeline services.PlanPipeline
	AI       services.AIClient
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	// Redis is optional: without it the writer runs on the dedup window
	// check alone, which is the documented degraded mode.
	var lock services.DedupLock
	if dedupLock, err := redisclient.NewDedupLock(log); err != nil {
		log.Warn("redis dedup lock unavailable, using window check only", "error", err)
	} else {
		lock = dedupLock
	}

	ai, err := services.NewOpenAIClient(log)
	if err != nil {
		return Services{}, err
	}

	writer := services.NewAssessmentWriter(log, reposet.Assessment, reposet.LegacyEntry, lock, cfg.DedupWindow)
	reader := services.NewAssessmentReader(log, reposet.Assessment, reposet.LegacyEntry, cfg.AnalysisQualityFloor)
	migrator := services.NewLegacyMigrator(log, reposet.LegacyEntry, reposet.Assessment, writer)
	auditor := services.NewIntegrityAuditor(log, reader, cfg.AnalysisQualityFloor)
	pipeline := services.NewPlanPipeline(
		log,
		reposet.User,
		reposet.Assessment,
		reposet.PlanAnalysis,
		reposet.Recommendation,
		reposet.ScheduledAction,
		reposet.Intervention,
		writer,
		ai,
		cfg.HistoryLimit,
		cfg.CompletionTimeout,
	)

	return Services{
		Writer:   writer,
		Reader:   reader,
		Migrator: migrator,
		Auditor:  auditor,
		Pipeline: pipeline,
		AI:       ai,
	}, nil
}
