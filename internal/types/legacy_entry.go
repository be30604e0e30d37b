package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LegacyEntry mirrors the old free-form event log. Loosely typed on
// purpose: Metadata may or may not carry pillar_type, assessment_score
// or ai_generated, depending on which client version wrote it.
type LegacyEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Type      string         `gorm:"not null;index;column:type" json:"type"`
	Details   string         `gorm:"column:details" json:"details"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (LegacyEntry) TableName() string { return "legacy_entry" }
