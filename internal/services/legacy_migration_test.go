package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

type migrationFixture struct {
	db          *gorm.DB
	assessments repos.AssessmentRepo
	legacy      repos.LegacyEntryRepo
	reader      AssessmentReader
	migrator    LegacyMigrator
	userID      uuid.UUID
}

func newMigrationFixture(t *testing.T) *migrationFixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	assessments := repos.NewAssessmentRepo(gdb, log)
	legacy := repos.NewLegacyEntryRepo(gdb, log)
	writer := NewAssessmentWriter(log, assessments, legacy, nil, 5*time.Minute)
	return &migrationFixture{
		db:          gdb,
		assessments: assessments,
		legacy:      legacy,
		reader:      NewAssessmentReader(log, assessments, legacy, testQualityFloor),
		migrator:    NewLegacyMigrator(log, legacy, assessments, writer),
		userID:      seedUser(t, gdb),
	}
}

func TestMigrateLegacyDataBackfillsAIEntries(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedLegacy(t, f.db, f.userID, LegacyTypeAssessment,
		longDetails("fitness"),
		`{"pillar_type":"health","assessment_score":65,"ai_generated":true}`,
		now.Add(-48*time.Hour))
	seedLegacy(t, f.db, f.userID, "ai_assessment",
		longDetails("money"),
		`{"pillar_type":"finances","assessment_score":40,"ai_generated":true}`,
		now.Add(-24*time.Hour))
	// Human-written note, never AI output: not migratable.
	seedLegacy(t, f.db, f.userID, "coaching_session",
		longDetails("career"),
		`{"pillar_type":"career"}`,
		now.Add(-12*time.Hour))

	result, err := f.migrator.MigrateLegacyData(ctx, f.userID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 2 {
		t.Fatalf("migrated = %d, want 2 (errors: %v)", result.MigratedCount, result.Errors)
	}
	if result.SkippedCount != 1 {
		t.Fatalf("skipped = %d, want 1", result.SkippedCount)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("errors = %v, want none", result.Errors)
	}

	count, _ := f.assessments.CountByUserID(ctx, nil, f.userID)
	if count != 2 {
		t.Fatalf("canonical records = %d, want 2", count)
	}

	view, err := f.reader.GetAssessments(ctx, f.userID)
	if err != nil {
		t.Fatalf("view after migration: %v", err)
	}
	for _, entry := range view {
		if entry.PillarType == PillarHealth && entry.Source != ViewSourceHybrid {
			t.Fatalf("migrated health entry source = %s, want %s", entry.Source, ViewSourceHybrid)
		}
	}
}

func TestMigrateLegacyDataConverges(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()

	seedLegacy(t, f.db, f.userID, LegacyTypeAssessment,
		longDetails("sleep"),
		`{"pillar_type":"health","assessment_score":70,"ai_generated":true}`,
		time.Now().UTC().Add(-time.Hour))

	first, err := f.migrator.MigrateLegacyData(ctx, f.userID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.MigratedCount != 1 {
		t.Fatalf("first run migrated = %d, want 1", first.MigratedCount)
	}

	second, err := f.migrator.MigrateLegacyData(ctx, f.userID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.MigratedCount != 0 {
		t.Fatalf("second run migrated = %d, want 0", second.MigratedCount)
	}

	count, _ := f.assessments.CountByUserID(ctx, nil, f.userID)
	if count != 1 {
		t.Fatalf("canonical records after two runs = %d, want 1", count)
	}
}

func TestMigrateLegacyDataSkipsCoveredPillars(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedCanonical(t, f.db, f.userID, PillarHealth, types.SourceLiveSubmission, now.Add(-time.Hour))
	seedLegacy(t, f.db, f.userID, LegacyTypeAssessment,
		longDetails("fitness"),
		`{"pillar_type":"health","assessment_score":50,"ai_generated":true}`,
		now.Add(-72*time.Hour))

	result, err := f.migrator.MigrateLegacyData(ctx, f.userID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 0 || result.SkippedCount != 1 {
		t.Fatalf("result = %+v, want 0 migrated / 1 skipped", result)
	}
}

func TestMigrateLegacyDataIgnoresMirrorRows(t *testing.T) {
	f := newMigrationFixture(t)
	ctx := context.Background()

	seedLegacy(t, f.db, f.userID, LegacyTypeAssessment,
		longDetails("skills"),
		`{"pillar_type":"skills","ai_generated":true,"source":"canonical_mirror","canonical_record_id":"`+uuid.NewString()+`"}`,
		time.Now().UTC())

	result, err := f.migrator.MigrateLegacyData(ctx, f.userID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if result.MigratedCount != 0 || result.SkippedCount != 1 {
		t.Fatalf("result = %+v, want mirror row skipped", result)
	}
}

func TestMigrateLegacyDataAccumulatesPerEntryErrors(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	assessments := repos.NewAssessmentRepo(gdb, log)
	legacy := repos.NewLegacyEntryRepo(gdb, log)
	userID := seedUser(t, gdb)
	now := time.Now().UTC()

	seedLegacy(t, gdb, userID, LegacyTypeAssessment,
		longDetails("fitness"),
		`{"pillar_type":"health","ai_generated":true}`,
		now.Add(-2*time.Hour))
	seedLegacy(t, gdb, userID, LegacyTypeAssessment,
		longDetails("money"),
		`{"pillar_type":"finances","ai_generated":true}`,
		now.Add(-time.Hour))

	writer := &pillarRejectingWriter{
		inner:  NewAssessmentWriter(log, assessments, legacy, nil, 5*time.Minute),
		reject: PillarHealth,
	}
	migrator := NewLegacyMigrator(log, legacy, assessments, writer)

	result, err := migrator.MigrateLegacyData(context.Background(), userID)
	if err != nil {
		t.Fatalf("migrate should not fail wholesale: %v", err)
	}
	if result.MigratedCount != 1 {
		t.Fatalf("migrated = %d, want 1", result.MigratedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", result.Errors)
	}
}

func TestMigrateLegacyDataRequiresUser(t *testing.T) {
	f := newMigrationFixture(t)
	if _, err := f.migrator.MigrateLegacyData(context.Background(), uuid.Nil); err == nil {
		t.Fatal("nil user accepted")
	}
}

// pillarRejectingWriter fails writes for one pillar and delegates the rest.
type pillarRejectingWriter struct {
	inner  AssessmentWriter
	reject string
}

func (w *pillarRejectingWriter) SaveAssessment(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if req.PillarType == w.reject {
		return nil, errors.New("canonical store rejected the write")
	}
	return w.inner.SaveAssessment(ctx, req)
}
