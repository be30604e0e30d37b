package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

// ScheduledAction is a dated micro-action derived from a plan's habits
// and weekly milestones. CompletionPct is mutated by collaborators only.
type ScheduledAction struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AssessmentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	PillarType    string    `gorm:"not null;column:pillar_type" json:"pillar_type"`
	Title         string    `gorm:"not null;column:title" json:"title"`
	Cadence       string    `gorm:"not null;column:cadence" json:"cadence"`
	ScheduledFor  time.Time `gorm:"not null;index;column:scheduled_for" json:"scheduled_for"`
	CompletionPct float64   `gorm:"column:completion_pct" json:"completion_pct"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (ScheduledAction) TableName() string { return "scheduled_action" }
