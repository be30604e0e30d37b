package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Write provenance values stored on AssessmentRecord.Source.
const (
	SourceLiveSubmission  = "live_submission"
	SourceForcedUpdate    = "forced_update"
	SourceLegacyMigration = "legacy_migration"
)

// AssessmentRecord is the canonical, append-only store for pillar
// assessments. Corrections are new rows; nothing updates in place.
type AssessmentRecord struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index:idx_assessment_user_pillar" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	PillarType     string         `gorm:"not null;index:idx_assessment_user_pillar;column:pillar_type" json:"pillar_type"`
	Answers        datatypes.JSON `gorm:"type:jsonb;column:answers" json:"answers"`
	Scores         datatypes.JSON `gorm:"type:jsonb;column:scores" json:"scores"`
	OverallScore   float64        `gorm:"column:overall_score" json:"overall_score"`
	Analysis       string         `gorm:"column:analysis" json:"analysis"`
	Comments       string         `gorm:"column:comments" json:"comments"`
	Source         string         `gorm:"not null;column:source" json:"source"`
	IdempotencyKey string         `gorm:"index;column:idempotency_key" json:"idempotency_key"`
	WriteReason    string         `gorm:"column:write_reason" json:"write_reason"`
	LineageContext datatypes.JSON `gorm:"type:jsonb;column:lineage_context" json:"lineage_context"`
	ProcessedAt    time.Time      `gorm:"column:processed_at" json:"processed_at"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (AssessmentRecord) TableName() string { return "assessment_record" }
