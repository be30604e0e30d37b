package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/lifepillar-backend/internal/pkg/errors"
	"github.com/yungbote/lifepillar-backend/internal/pkg/logger"
	"github.com/yungbote/lifepillar-backend/internal/repos"
	"github.com/yungbote/lifepillar-backend/internal/types"
)

func seedUser(t *testing.T, gdb *gorm.DB) uuid.UUID {
	t.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("%s@example.com", uuid.NewString()),
		FirstName: "Test",
		LastName:  "User",
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.ID
}

type writerFixture struct {
	db          *gorm.DB
	assessments repos.AssessmentRepo
	legacy      repos.LegacyEntryRepo
	writer      AssessmentWriter
	userID      uuid.UUID
}

func newWriterFixture(t *testing.T, lock DedupLock, window time.Duration) *writerFixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	assessments := repos.NewAssessmentRepo(gdb, log)
	legacy := repos.NewLegacyEntryRepo(gdb, log)
	return &writerFixture{
		db:          gdb,
		assessments: assessments,
		legacy:      legacy,
		writer:      NewAssessmentWriter(log, assessments, legacy, lock, window),
		userID:      seedUser(t, gdb),
	}
}

func validRequest(userID uuid.UUID, pillar string) SaveRequest {
	return SaveRequest{
		UserID:     userID,
		PillarType: pillar,
		Answers:    map[string]any{"q1": "every day", "q2": 4},
		Scores:     map[string]float64{"consistency": 60, "confidence": 80},
		Analysis:   "A steady routine is forming; protect the morning slot and build from there.",
	}
}

func TestSaveAssessmentIdempotentWithinWindow(t *testing.T) {
	f := newWriterFixture(t, nil, 5*time.Minute)
	ctx := context.Background()

	first, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarHealth))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if first.WasDuplicate {
		t.Fatal("first save flagged as duplicate")
	}

	second, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarHealth))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !second.WasDuplicate {
		t.Fatal("second save inside the window was not deduplicated")
	}
	if second.RecordID != first.RecordID {
		t.Fatalf("duplicate returned record %s, want %s", second.RecordID, first.RecordID)
	}

	count, err := f.assessments.CountByUserID(ctx, nil, f.userID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("canonical records = %d, want 1", count)
	}
}

func TestSaveAssessmentRapidResubmit(t *testing.T) {
	f := newWriterFixture(t, nil, 5*time.Minute)
	ctx := context.Background()

	base := time.Now().UTC()
	w := f.writer.(*assessmentWriter)
	w.now = func() time.Time { return base }

	first, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarCareer))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Same submission again ten seconds later, as a double-clicked form
	// would produce.
	w.now = func() time.Time { return base.Add(10 * time.Second) }
	second, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarCareer))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !second.WasDuplicate || second.RecordID != first.RecordID {
		t.Fatalf("resubmit got duplicate=%v record=%s, want duplicate of %s",
			second.WasDuplicate, second.RecordID, first.RecordID)
	}
}

func TestSaveAssessmentWindowExpiry(t *testing.T) {
	f := newWriterFixture(t, nil, time.Minute)
	ctx := context.Background()

	base := time.Now().UTC()
	w := f.writer.(*assessmentWriter)
	w.now = func() time.Time { return base }

	if _, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarFinances)); err != nil {
		t.Fatalf("first save: %v", err)
	}

	w.now = func() time.Time { return base.Add(2 * time.Minute) }
	second, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarFinances))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.WasDuplicate {
		t.Fatal("save after the window expired was treated as duplicate")
	}

	count, _ := f.assessments.CountByUserID(ctx, nil, f.userID)
	if count != 2 {
		t.Fatalf("canonical records = %d, want 2", count)
	}
}

func TestSaveAssessmentForceUpdateBypassesDedup(t *testing.T) {
	f := newWriterFixture(t, nil, 5*time.Minute)
	ctx := context.Background()

	first, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarMindset))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	req := validRequest(f.userID, PillarMindset)
	req.ForceUpdate = true
	second, err := f.writer.SaveAssessment(ctx, req)
	if err != nil {
		t.Fatalf("forced save: %v", err)
	}
	if second.WasDuplicate || second.RecordID == first.RecordID {
		t.Fatalf("forced update did not create a new record: %+v", second)
	}

	rec, err := f.assessments.GetByID(ctx, nil, second.RecordID)
	if err != nil {
		t.Fatalf("get forced record: %v", err)
	}
	if rec.Source != types.SourceForcedUpdate {
		t.Fatalf("forced record source = %q, want %q", rec.Source, types.SourceForcedUpdate)
	}
}

func TestSaveAssessmentRejectsInvalidInput(t *testing.T) {
	f := newWriterFixture(t, nil, 5*time.Minute)
	ctx := context.Background()

	if _, err := f.writer.SaveAssessment(ctx, validRequest(uuid.Nil, PillarHealth)); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("nil user error = %v, want ErrInvalidArgument", err)
	}
	if _, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, "astrology")); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("unknown pillar error = %v, want ErrInvalidArgument", err)
	}
}

func TestSaveAssessmentMirrorsToLegacyStore(t *testing.T) {
	f := newWriterFixture(t, nil, 5*time.Minute)
	ctx := context.Background()

	result, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarSkills))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}

	entries, err := f.legacy.GetByUserID(ctx, nil, f.userID)
	if err != nil {
		t.Fatalf("legacy read: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("legacy entries = %d, want 1", len(entries))
	}
	if entries[0].Type != LegacyTypeAssessment {
		t.Fatalf("mirror type = %q, want %q", entries[0].Type, LegacyTypeAssessment)
	}
	meta := decodeLegacyMetadata(entries[0])
	if src, _ := meta["source"].(string); src != "canonical_mirror" {
		t.Fatalf("mirror metadata source = %q, want canonical_mirror", src)
	}
	if id, _ := meta["canonical_record_id"].(string); id != result.RecordID.String() {
		t.Fatalf("mirror canonical_record_id = %q, want %s", id, result.RecordID)
	}
}

func TestSaveAssessmentMirrorFailureIsWarningOnly(t *testing.T) {
	gdb := newTestDB(t)
	log := logger.NewNop()
	assessments := repos.NewAssessmentRepo(gdb, log)
	writer := NewAssessmentWriter(log, assessments, failingLegacyRepo{}, nil, 5*time.Minute)
	userID := seedUser(t, gdb)
	ctx := context.Background()

	result, err := writer.SaveAssessment(ctx, validRequest(userID, PillarHealth))
	if err != nil {
		t.Fatalf("save should survive a mirror failure: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one mirror warning", result.Warnings)
	}

	count, _ := assessments.CountByUserID(ctx, nil, userID)
	if count != 1 {
		t.Fatalf("canonical records = %d, want 1", count)
	}
}

func TestSaveAssessmentLockDeniedReturnsExisting(t *testing.T) {
	lock := &stubLock{acquired: true}
	f := newWriterFixture(t, lock, time.Minute)
	ctx := context.Background()

	base := time.Now().UTC()
	w := f.writer.(*assessmentWriter)
	w.now = func() time.Time { return base }

	first, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarRelationships))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Outside the age window but a concurrent writer holds the lock.
	w.now = func() time.Time { return base.Add(2 * time.Minute) }
	lock.acquired = false
	second, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarRelationships))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if !second.WasDuplicate || second.RecordID != first.RecordID {
		t.Fatalf("lock-denied save got %+v, want duplicate of %s", second, first.RecordID)
	}
}

func TestSaveAssessmentLockFailureDegradesToWindowCheck(t *testing.T) {
	lock := &stubLock{err: errors.New("redis: connection refused")}
	f := newWriterFixture(t, lock, 5*time.Minute)
	ctx := context.Background()

	result, err := f.writer.SaveAssessment(ctx, validRequest(f.userID, PillarSelfCare))
	if err != nil {
		t.Fatalf("save with broken lock: %v", err)
	}
	if result.WasDuplicate {
		t.Fatal("broken lock should not suppress a first write")
	}
	if lock.calls == 0 {
		t.Fatal("lock was never consulted")
	}
}

type stubLock struct {
	acquired bool
	err      error
	calls    int
}

func (l *stubLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.calls++
	return l.acquired, l.err
}

type failingLegacyRepo struct{}

func (failingLegacyRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.LegacyEntry) (*types.LegacyEntry, error) {
	return nil, errors.New("legacy store offline")
}

func (failingLegacyRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.LegacyEntry, error) {
	return nil, errors.New("legacy store offline")
}

func (failingLegacyRepo) GetByUserIDAndTypes(ctx context.Context, tx *gorm.DB, userID uuid.UUID, entryTypes []string) ([]*types.LegacyEntry, error) {
	return nil, errors.New("legacy store offline")
}
