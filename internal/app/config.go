package app

import (
	"time"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/utils"
)

type Config struct {
	HTTPPort string
	// DedupWindow is how long a repeated submission for the same
	// (user, pillar) counts as a duplicate.
	DedupWindow time.Duration
	// AnalysisQualityFloor is the minimum analysis length (in bytes)
	// a legacy entry needs to count as a usable assessment.
	AnalysisQualityFloor int
	// HistoryLimit bounds how many prior records feed the plan prompt.
	HistoryLimit int
	// CompletionTimeout bounds the single AI completion call.
	CompletionTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	httpPort := utils.GetEnv("HTTP_PORT", "8080", log)
	dedupWindowSeconds := utils.GetEnvAsInt("DEDUP_WINDOW_SECONDS", 300, log)
	qualityFloor := utils.GetEnvAsInt("ANALYSIS_QUALITY_FLOOR", 50, log)
	historyLimit := utils.GetEnvAsInt("PLAN_HISTORY_LIMIT", 3, log)
	completionTimeoutSeconds := utils.GetEnvAsInt("COMPLETION_TIMEOUT_SECONDS", 45, log)
	return Config{
		HTTPPort:             httpPort,
		DedupWindow:          time.Duration(dedupWindowSeconds) * time.Second,
		AnalysisQualityFloor: qualityFloor,
		HistoryLimit:         historyLimit,
		CompletionTimeout:    time.Duration(completionTimeoutSeconds) * time.Second,
	}
}
