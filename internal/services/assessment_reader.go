package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

// Source values on a PillarAssessment view entry.
const (
	ViewSourceCanonical = "canonical"
	ViewSourceLegacy    = "legacy"
	// ViewSourceHybrid marks a canonical record that was backfilled from
	// the legacy store, so the same data exists in both.
	ViewSourceHybrid = "hybrid"
)

// PillarAssessment is one entry of the unified view: the active
// assessment for a pillar, with its provenance. Derived, never persisted.
type PillarAssessment struct {
	PillarType   string             `json:"pillar_type"`
	Source       string             `json:"source"`
	RecordID     uuid.UUID          `json:"record_id"`
	Scores       map[string]float64 `json:"scores"`
	OverallScore float64            `json:"overall_score"`
	Analysis     string             `json:"analysis"`
	Comments     string             `json:"comments,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

type AssessmentReader interface {
	GetAssessments(ctx context.Context, userID uuid.UUID) ([]*PillarAssessment, error)
}

type assessmentReader struct {
	log          *logger.Logger
	assessments  repos.AssessmentRepo
	legacy       repos.LegacyEntryRepo
	qualityFloor int
}

func NewAssessmentReader(baseLog *logger.Logger, assessments repos.AssessmentRepo, legacy repos.LegacyEntryRepo, qualityFloor int) AssessmentReader {
	return &assessmentReader{
		log:          baseLog.With("service", "AssessmentReader"),
		assessments:  assessments,
		legacy:       legacy,
		qualityFloor: qualityFloor,
	}
}

// GetAssessments merges the canonical and legacy stores into one
// deduplicated, time-ordered view. Canonical wins per pillar; legacy only
// fills gaps. A canonical read failure is fatal; a legacy read failure
// degrades to an empty legacy contribution.
func (s *assessmentReader) GetAssessments(ctx context.Context, userID uuid.UUID) ([]*PillarAssessment, error) {
	var (
		records []*types.AssessmentRecord
		entries []*types.LegacyEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.assessments.GetByUserID(gctx, nil, userID)
		return err
	})
	g.Go(func() error {
		legacyEntries, err := s.legacy.GetByUserID(gctx, nil, userID)
		if err != nil {
			s.log.Warn("legacy store read failed, continuing with canonical only", "user_id", userID, "error", err)
			return nil
		}
		entries = legacyEntries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := make([]*PillarAssessment, 0, len(records))
	seen := map[string]bool{}

	// Records come back newest-first, so the first record per pillar is
	// the active one; older rows are history.
	for _, rec := range records {
		if seen[rec.PillarType] {
			continue
		}
		seen[rec.PillarType] = true
		view = append(view, canonicalViewEntry(rec))
	}

	for _, entry := range entries {
		pillar, ok := ClassifyLegacyEntry(entry)
		if !ok || seen[pillar] {
			continue
		}
		if len(entry.Details) < s.qualityFloor {
			continue
		}
		seen[pillar] = true
		view = append(view, legacyViewEntry(entry, pillar))
	}

	sort.Slice(view, func(i, j int) bool {
		return view[i].CreatedAt.After(view[j].CreatedAt)
	})
	return view, nil
}

func canonicalViewEntry(rec *types.AssessmentRecord) *PillarAssessment {
	source := ViewSourceCanonical
	if rec.Source == types.SourceLegacyMigration {
		source = ViewSourceHybrid
	}
	return &PillarAssessment{
		PillarType:   rec.PillarType,
		Source:       source,
		RecordID:     rec.ID,
		Scores:       decodeScores(rec.Scores),
		OverallScore: rec.OverallScore,
		Analysis:     rec.Analysis,
		Comments:     rec.Comments,
		CreatedAt:    rec.CreatedAt,
	}
}

func legacyViewEntry(entry *types.LegacyEntry, pillar string) *PillarAssessment {
	meta := decodeLegacyMetadata(entry)
	scores := map[string]float64{}
	overall := 0.0
	if raw, ok := meta["assessment_score"].(float64); ok {
		scores[pillar] = raw
		overall = raw
	}
	return &PillarAssessment{
		PillarType:   pillar,
		Source:       ViewSourceLegacy,
		RecordID:     entry.ID,
		Scores:       scores,
		OverallScore: overall,
		Analysis:     entry.Details,
		CreatedAt:    entry.CreatedAt,
	}
}

func decodeScores(raw []byte) map[string]float64 {
	scores := map[string]float64{}
	if len(raw) == 0 {
		return scores
	}
	_ = json.Unmarshal(raw, &scores)
	return scores
}
