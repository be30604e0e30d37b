package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

const testQualityFloor = 50

func seedCanonical(t *testing.T, gdb *gorm.DB, userID uuid.UUID, pillar, source string, createdAt time.Time) *types.AssessmentRecord {
	t.Helper()
	rec := &types.AssessmentRecord{
		ID:           uuid.New(),
		UserID:       userID,
		PillarType:   pillar,
		Answers:      []byte(`{"q1":"yes"}`),
		Scores:       []byte(`{"` + pillar + `":70}`),
		OverallScore: 70,
		Analysis:     strings.Repeat("Solid progress with room to grow. ", 3),
		Source:       source,
		WriteReason:  "new submission",
		ProcessedAt:  createdAt,
		CreatedAt:    createdAt,
	}
	if err := gdb.Create(rec).Error; err != nil {
		t.Fatalf("seed canonical: %v", err)
	}
	return rec
}

func seedLegacy(t *testing.T, gdb *gorm.DB, userID uuid.UUID, entryType, details, metadata string, createdAt time.Time) *types.LegacyEntry {
	t.Helper()
	entry := &types.LegacyEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      entryType,
		Details:   details,
		Metadata:  []byte(metadata),
		CreatedAt: createdAt,
	}
	if err := gdb.Create(entry).Error; err != nil {
		t.Fatalf("seed legacy: %v", err)
	}
	return entry
}

func newReaderFixture(t *testing.T) (*gorm.DB, AssessmentReader, uuid.UUID) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	reader := NewAssessmentReader(log,
		repos.NewAssessmentRepo(gdb, log),
		repos.NewLegacyEntryRepo(gdb, log),
		testQualityFloor)
	return gdb, reader, seedUser(t, gdb)
}

func longDetails(pillarHint string) string {
	return "AI coaching notes about " + pillarHint + ": " + strings.Repeat("keep going. ", 6)
}

func TestGetAssessmentsCanonicalWinsPerPillar(t *testing.T) {
	gdb, reader, userID := newReaderFixture(t)
	now := time.Now().UTC()

	rec := seedCanonical(t, gdb, userID, PillarHealth, types.SourceLiveSubmission, now.Add(-time.Hour))
	seedLegacy(t, gdb, userID, LegacyTypeAssessment,
		longDetails("fitness"),
		`{"pillar_type":"health","assessment_score":55,"ai_generated":true}`,
		now)

	view, err := reader.GetAssessments(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAssessments: %v", err)
	}
	if len(view) != 1 {
		t.Fatalf("view entries = %d, want 1", len(view))
	}
	if view[0].Source != ViewSourceCanonical || view[0].RecordID != rec.ID {
		t.Fatalf("health entry = %+v, want canonical record %s", view[0], rec.ID)
	}
}

func TestGetAssessmentsLegacyFillsGaps(t *testing.T) {
	gdb, reader, userID := newReaderFixture(t)
	now := time.Now().UTC()

	seedCanonical(t, gdb, userID, PillarHealth, types.SourceLiveSubmission, now.Add(-time.Hour))
	legacy := seedLegacy(t, gdb, userID, LegacyTypeAssessment,
		longDetails("money"),
		`{"pillar_type":"finances","assessment_score":42.5,"ai_generated":true}`,
		now.Add(-2*time.Hour))

	view, err := reader.GetAssessments(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAssessments: %v", err)
	}
	if len(view) != 2 {
		t.Fatalf("view entries = %d, want 2", len(view))
	}

	var finances *PillarAssessment
	for _, entry := range view {
		if entry.PillarType == PillarFinances {
			finances = entry
		}
	}
	if finances == nil {
		t.Fatal("legacy finances entry missing from view")
	}
	if finances.Source != ViewSourceLegacy || finances.RecordID != legacy.ID {
		t.Fatalf("finances entry = %+v, want legacy entry %s", finances, legacy.ID)
	}
	if finances.OverallScore != 42.5 {
		t.Fatalf("finances overall = %v, want 42.5", finances.OverallScore)
	}
}

func TestGetAssessmentsEnforcesQualityFloor(t *testing.T) {
	gdb, reader, userID := newReaderFixture(t)

	// 40 characters of detail, below the 50-character floor.
	short := strings.Repeat("x", 40)
	seedLegacy(t, gdb, userID, LegacyTypeAssessment, short,
		`{"pillar_type":"skills","assessment_score":60,"ai_generated":true}`,
		time.Now().UTC())

	view, err := reader.GetAssessments(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAssessments: %v", err)
	}
	if len(view) != 0 {
		t.Fatalf("low-quality legacy entry surfaced in view: %+v", view[0])
	}
}

func TestGetAssessmentsMarksMigratedRecordsHybrid(t *testing.T) {
	gdb, reader, userID := newReaderFixture(t)

	seedCanonical(t, gdb, userID, PillarMindset, types.SourceLegacyMigration, time.Now().UTC())

	view, err := reader.GetAssessments(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAssessments: %v", err)
	}
	if len(view) != 1 || view[0].Source != ViewSourceHybrid {
		t.Fatalf("migrated record source = %+v, want %s", view, ViewSourceHybrid)
	}
}

func TestGetAssessmentsNewestFirst(t *testing.T) {
	gdb, reader, userID := newReaderFixture(t)
	now := time.Now().UTC()

	seedCanonical(t, gdb, userID, PillarHealth, types.SourceLiveSubmission, now.Add(-3*time.Hour))
	seedCanonical(t, gdb, userID, PillarCareer, types.SourceLiveSubmission, now.Add(-time.Hour))
	seedLegacy(t, gdb, userID, LegacyTypeAssessment,
		longDetails("partner"),
		`{"pillar_type":"relationships","ai_generated":true}`,
		now.Add(-2*time.Hour))

	view, err := reader.GetAssessments(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetAssessments: %v", err)
	}
	want := []string{PillarCareer, PillarRelationships, PillarHealth}
	if len(view) != len(want) {
		t.Fatalf("view entries = %d, want %d", len(view), len(want))
	}
	for i, pillar := range want {
		if view[i].PillarType != pillar {
			t.Fatalf("view[%d] = %s, want %s", i, view[i].PillarType, pillar)
		}
	}
}

func TestGetAssessmentsToleratesLegacyFailure(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	userID := seedUser(t, gdb)
	reader := NewAssessmentReader(log, repos.NewAssessmentRepo(gdb, log), failingLegacyRepo{}, testQualityFloor)

	rec := seedCanonical(t, gdb, userID, PillarFinances, types.SourceLiveSubmission, time.Now().UTC())

	view, err := reader.GetAssessments(context.Background(), userID)
	if err != nil {
		t.Fatalf("legacy outage should not fail the read: %v", err)
	}
	if len(view) != 1 || view[0].RecordID != rec.ID {
		t.Fatalf("view = %+v, want only canonical record %s", view, rec.ID)
	}
}
