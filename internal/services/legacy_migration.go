package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

// Legacy event types that may hold recoverable assessment output. Old
// clients were not consistent about which one they wrote.
var migratableEntryTypes = []string{
	LegacyTypeAssessment,
	"ai_assessment",
	"coaching_session",
}

type MigrationResult struct {
	MigratedCount int      `json:"migrated_count"`
	SkippedCount  int      `json:"skipped_count"`
	Errors        []string `json:"errors"`
}

type LegacyMigrator interface {
	MigrateLegacyData(ctx context.Context, userID uuid.UUID) (*MigrationResult, error)
}

type legacyMigrator struct {
	log         *logger.Logger
	legacy      repos.LegacyEntryRepo
	assessments repos.AssessmentRepo
	writer      AssessmentWriter
}

func NewLegacyMigrator(baseLog *logger.Logger, legacy repos.LegacyEntryRepo, assessments repos.AssessmentRepo, writer AssessmentWriter) LegacyMigrator {
	return &legacyMigrator{
		log:         baseLog.With("service", "LegacyMigrator"),
		legacy:      legacy,
		assessments: assessments,
		writer:      writer,
	}
}

// MigrateLegacyData backfills the canonical store from legacy-only
// assessment events, writing through the same idempotent writer as live
// traffic. Partial success is the expected outcome: per-entry failures
// land in Errors and the loop keeps going.
func (s *legacyMigrator) MigrateLegacyData(ctx context.Context, userID uuid.UUID) (*MigrationResult, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}

	entries, err := s.legacy.GetByUserIDAndTypes(ctx, nil, userID, migratableEntryTypes)
	if err != nil {
		return nil, fmt.Errorf("legacy read: %w", err)
	}

	result := &MigrationResult{Errors: []string{}}
	migrated := map[string]bool{}

	for _, entry := range entries {
		if !looksLikeAssessmentOutput(entry) {
			result.SkippedCount++
			continue
		}
		pillar, ok := ClassifyLegacyEntry(entry)
		if !ok {
			result.SkippedCount++
			continue
		}
		if migrated[pillar] {
			result.SkippedCount++
			continue
		}
		covered, err := s.pillarHasCanonical(ctx, userID, pillar)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %s: canonical lookup: %v", entry.ID, err))
			continue
		}
		if covered {
			result.SkippedCount++
			continue
		}

		req := s.synthesizeRequest(userID, pillar, entry)
		saveResult, err := s.writer.SaveAssessment(ctx, req)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("entry %s: %v", entry.ID, err))
			continue
		}
		if saveResult.WasDuplicate {
			result.SkippedCount++
			continue
		}
		migrated[pillar] = true
		result.MigratedCount++
		s.log.Info("legacy entry migrated",
			"user_id", userID, "pillar", pillar, "entry_id", entry.ID, "record_id", saveResult.RecordID)
	}

	return result, nil
}

func looksLikeAssessmentOutput(entry *types.LegacyEntry) bool {
	if entry == nil || strings.TrimSpace(entry.Details) == "" {
		return false
	}
	meta := decodeLegacyMetadata(entry)
	// Mirror rows written by the canonical path are already covered.
	if src, _ := meta["source"].(string); src == "canonical_mirror" {
		return false
	}
	aiGenerated, _ := meta["ai_generated"].(bool)
	return aiGenerated
}

func (s *legacyMigrator) pillarHasCanonical(ctx context.Context, userID uuid.UUID, pillar string) (bool, error) {
	count, err := s.assessments.CountByUserAndPillarSince(ctx, nil, userID, pillar, time.Time{})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *legacyMigrator) synthesizeRequest(userID uuid.UUID, pillar string, entry *types.LegacyEntry) SaveRequest {
	meta := decodeLegacyMetadata(entry)

	scores := map[string]float64{}
	if raw, ok := meta["assessment_score"].(float64); ok {
		scores[pillar] = raw
	}

	answers := map[string]any{}
	if rawAnswers, ok := meta["answers"].(map[string]any); ok && len(rawAnswers) > 0 {
		answers = rawAnswers
	} else {
		// Nothing recoverable; mark the record as a reconstruction so
		// readers know the answers were never captured.
		answers["reconstructed_from_legacy"] = true
	}

	return SaveRequest{
		UserID:         userID,
		PillarType:     pillar,
		Answers:        answers,
		Scores:         scores,
		Analysis:       entry.Details,
		IdempotencyKey: fmt.Sprintf("legacy:%s", entry.ID),
		Source:         types.SourceLegacyMigration,
	}
}
