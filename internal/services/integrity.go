package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
)

const (
	HealthStatusHealthy  = "healthy"
	HealthStatusWarning  = "warning"
	HealthStatusCritical = "critical"
)

type HealthReport struct {
	Status          string   `json:"status"`
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
}

type IntegrityAuditor interface {
	PerformHealthCheck(ctx context.Context, userID uuid.UUID) *HealthReport
}

type integrityAuditor struct {
	log          *logger.Logger
	reader       AssessmentReader
	qualityFloor int
}

func NewIntegrityAuditor(baseLog *logger.Logger, reader AssessmentReader, qualityFloor int) IntegrityAuditor {
	return &integrityAuditor{
		log:          baseLog.With("service", "IntegrityAuditor"),
		reader:       reader,
		qualityFloor: qualityFloor,
	}
}

// PerformHealthCheck runs read-only checks over the unified view.
// Findings are advisory: the check never fails the caller, and a failure
// of the check itself is reported as a critical issue instead of an error.
func (s *integrityAuditor) PerformHealthCheck(ctx context.Context, userID uuid.UUID) *HealthReport {
	report := &HealthReport{
		Issues:          []string{},
		Recommendations: []string{},
	}

	view, err := s.reader.GetAssessments(ctx, userID)
	if err != nil {
		s.log.Error("health check could not read assessments", "user_id", userID, "error", err)
		report.Status = HealthStatusCritical
		report.Issues = append(report.Issues, fmt.Sprintf("assessment read failed: %v", err))
		report.Recommendations = append(report.Recommendations, "verify canonical store connectivity")
		return report
	}

	// Duplicate pillars should be impossible given the reader's
	// precedence rule; checked anyway against reader bugs.
	seen := map[string]int{}
	for _, entry := range view {
		seen[entry.PillarType]++
	}
	for pillar, count := range seen {
		if count > 1 {
			report.Issues = append(report.Issues, fmt.Sprintf("pillar %s has %d active entries", pillar, count))
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("inspect duplicate records for pillar %s", pillar))
		}
	}

	legacyOnly := true
	for _, entry := range view {
		if len(entry.Analysis) < s.qualityFloor {
			report.Issues = append(report.Issues, fmt.Sprintf("pillar %s is missing usable analysis text", entry.PillarType))
			report.Recommendations = append(report.Recommendations, fmt.Sprintf("resubmit the %s assessment to regenerate analysis", entry.PillarType))
		}
		if entry.Source != ViewSourceLegacy {
			legacyOnly = false
		}
	}

	if len(view) > 0 && legacyOnly {
		report.Issues = append(report.Issues, "all assessments are legacy-sourced, canonical store has no records")
		report.Recommendations = append(report.Recommendations, "run the legacy migration for this user")
	}

	switch {
	case len(report.Issues) == 0:
		report.Status = HealthStatusHealthy
	case len(report.Issues) <= 2:
		report.Status = HealthStatusWarning
	default:
		report.Status = HealthStatusCritical
	}
	return report
}
