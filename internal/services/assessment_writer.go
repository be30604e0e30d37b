package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	pkgerrors "github.com/yungbote/lifepillar-backend/internal/pkg/errors"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

// LegacyTypeAssessment is the event type the old clients wrote when an
// assessment finished. The mirror write keeps producing it so legacy
// readers stay functional.
const LegacyTypeAssessment = "assessment_completed"

// DedupLock serializes near-simultaneous writes for the same
// (user, pillar). Acquire returns false when another writer holds the
// window. Implementations may be unavailable; the writer falls back to
// the read-then-write check alone.
type DedupLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type SaveRequest struct {
	UserID         uuid.UUID          `json:"user_id"`
	PillarType     string             `json:"pillar_type"`
	Answers        map[string]any     `json:"assessment_data"`
	Scores         map[string]float64 `json:"scores"`
	Comments       string             `json:"comments,omitempty"`
	Analysis       string             `json:"analysis,omitempty"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	ForceUpdate    bool               `json:"force_update,omitempty"`

	// Source overrides the lineage tag; empty means live_submission.
	Source string `json:"-"`
}

type SaveResult struct {
	RecordID     uuid.UUID `json:"record_id"`
	WasDuplicate bool      `json:"was_duplicate"`
	Warnings     []string  `json:"warnings,omitempty"`
}

type AssessmentWriter interface {
	SaveAssessment(ctx context.Context, req SaveRequest) (*SaveResult, error)
}

type assessmentWriter struct {
	log         *logger.Logger
	assessments repos.AssessmentRepo
	legacy      repos.LegacyEntryRepo
	lock        DedupLock
	dedupWindow time.Duration
	now         func() time.Time
}

func NewAssessmentWriter(baseLog *logger.Logger, assessments repos.AssessmentRepo, legacy repos.LegacyEntryRepo, lock DedupLock, dedupWindow time.Duration) AssessmentWriter {
	return &assessmentWriter{
		log:         baseLog.With("service", "AssessmentWriter"),
		assessments: assessments,
		legacy:      legacy,
		lock:        lock,
		dedupWindow: dedupWindow,
		now:         time.Now,
	}
}

// SaveAssessment persists one assessment. Repeated submissions for the
// same (user, pillar) inside the dedup window return the existing record
// instead of writing a new one. The canonical write is authoritative; the
// legacy mirror is best effort and only ever produces a warning.
func (s *assessmentWriter) SaveAssessment(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", pkgerrors.ErrInvalidArgument)
	}
	if !IsValidPillar(req.PillarType) {
		return nil, fmt.Errorf("unknown pillar %q: %w", req.PillarType, pkgerrors.ErrInvalidArgument)
	}

	source := req.Source
	if source == "" {
		source = types.SourceLiveSubmission
	}
	if req.ForceUpdate && source == types.SourceLiveSubmission {
		source = types.SourceForcedUpdate
	}

	if !req.ForceUpdate {
		dup, err := s.findDuplicate(ctx, req.UserID, req.PillarType)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			s.log.Info("duplicate submission suppressed",
				"user_id", req.UserID, "pillar", req.PillarType, "record_id", dup.ID)
			return &SaveResult{RecordID: dup.ID, WasDuplicate: true}, nil
		}
	}

	now := s.now().UTC()
	record := &types.AssessmentRecord{
		ID:             uuid.New(),
		UserID:         req.UserID,
		PillarType:     req.PillarType,
		Answers:        mustMarshalJSON(req.Answers),
		Scores:         mustMarshalJSON(req.Scores),
		OverallScore:   overallScore(req.Scores),
		Analysis:       req.Analysis,
		Comments:       req.Comments,
		Source:         source,
		IdempotencyKey: req.IdempotencyKey,
		WriteReason:    writeReason(source),
		LineageContext: mustMarshalJSON(map[string]any{
			"component":       "AssessmentWriter",
			"idempotency_key": req.IdempotencyKey,
			"processed_at":    now.Format(time.RFC3339),
		}),
		ProcessedAt: now,
		CreatedAt:   now,
	}

	created, err := s.assessments.Create(ctx, nil, record)
	if err != nil {
		s.log.Error("canonical assessment write failed",
			"user_id", req.UserID, "pillar", req.PillarType, "error", err)
		return nil, fmt.Errorf("canonical write: %w", err)
	}

	result := &SaveResult{RecordID: created.ID}
	if warn := s.mirrorToLegacy(ctx, created); warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	return result, nil
}

// findDuplicate runs the dedup check: the Redis window lock when
// configured, plus the latest-record age check either way. The lock
// closes the narrow race the age check alone cannot; without Redis the
// wide window still absorbs double-clicks and network retries.
func (s *assessmentWriter) findDuplicate(ctx context.Context, userID uuid.UUID, pillar string) (*types.AssessmentRecord, error) {
	latest, err := s.assessments.GetLatestByUserAndPillar(ctx, nil, userID, pillar)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if latest != nil && s.now().UTC().Sub(latest.CreatedAt) < s.dedupWindow {
		return latest, nil
	}

	if s.lock != nil {
		key := fmt.Sprintf("assessment:dedup:%s:%s", userID, pillar)
		acquired, lockErr := s.lock.Acquire(ctx, key, s.dedupWindow)
		if lockErr != nil {
			s.log.Warn("dedup lock unavailable, relying on window check alone", "error", lockErr)
			return nil, nil
		}
		if !acquired {
			// A concurrent writer owns the window. Its record may not be
			// visible yet; return whatever is, otherwise let this write
			// proceed rather than fail the submission.
			if latest != nil {
				return latest, nil
			}
			refreshed, refErr := s.assessments.GetLatestByUserAndPillar(ctx, nil, userID, pillar)
			if refErr == nil {
				return refreshed, nil
			}
		}
	}
	return nil, nil
}

func (s *assessmentWriter) mirrorToLegacy(ctx context.Context, record *types.AssessmentRecord) string {
	entry := &types.LegacyEntry{
		ID:      uuid.New(),
		UserID:  record.UserID,
		Type:    LegacyTypeAssessment,
		Details: record.Analysis,
		Metadata: mustMarshalJSON(map[string]any{
			"pillar_type":         record.PillarType,
			"assessment_score":    record.OverallScore,
			"ai_generated":        record.Analysis != "",
			"source":              "canonical_mirror",
			"canonical_record_id": record.ID.String(),
		}),
		CreatedAt: record.CreatedAt,
	}
	if _, err := s.legacy.Create(ctx, nil, entry); err != nil {
		s.log.Warn("legacy mirror write failed, canonical record stands",
			"user_id", record.UserID, "pillar", record.PillarType, "error", err)
		return fmt.Sprintf("legacy mirror write failed: %v", err)
	}
	return ""
}

func writeReason(source string) string {
	switch source {
	case types.SourceForcedUpdate:
		return "forced update"
	case types.SourceLegacyMigration:
		return "migration backfill"
	default:
		return "new submission"
	}
}

func overallScore(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}

func mustMarshalJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(raw)
}
