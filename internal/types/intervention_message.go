package types

import (
	"time"

	"github.com/google/uuid"
)

// InterventionMessage is a proactive coaching nudge queued for delivery.
// Delivery itself is an external collaborator's job.
type InterventionMessage struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	PillarType   string    `gorm:"not null;column:pillar_type" json:"pillar_type"`
	Trigger      string    `gorm:"not null;column:trigger" json:"trigger"`
	Message      string    `gorm:"not null;column:message" json:"message"`
	Priority     string    `gorm:"not null;column:priority" json:"priority"`
	Delivered    bool      `gorm:"not null;default:false;column:delivered" json:"delivered"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (InterventionMessage) TableName() string { return "intervention_message" }
