package types

import (
	"time"

	"github.com/google/uuid"
)

// PlanAnalysis holds the long-form analysis produced for one submission.
type PlanAnalysis struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	PillarType   string    `gorm:"not null;column:pillar_type" json:"pillar_type"`
	Analysis     string    `gorm:"column:analysis" json:"analysis"`
	Summary      string    `gorm:"column:summary" json:"summary"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (PlanAnalysis) TableName() string { return "plan_analysis" }
