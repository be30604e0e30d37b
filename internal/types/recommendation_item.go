package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	RecommendationPending   = "pending"
	RecommendationCompleted = "completed"
	RecommendationDismissed = "dismissed"

	RecommendationWeeklyGoal      = "weekly_goal"
	RecommendationImmediateAction = "immediate_action"
)

// RecommendationItem is one actionable suggestion derived from a plan.
// The core only creates these; status changes come from collaborators.
type RecommendationItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	PillarType   string    `gorm:"not null;column:pillar_type" json:"pillar_type"`
	Title        string    `gorm:"not null;column:title" json:"title"`
	Detail       string    `gorm:"column:detail" json:"detail"`
	Category     string    `gorm:"not null;column:category" json:"category"`
	Priority     string    `gorm:"not null;column:priority" json:"priority"`
	Status       string    `gorm:"not null;default:pending;column:status" json:"status"`
	DueDate      time.Time `gorm:"column:due_date" json:"due_date"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (RecommendationItem) TableName() string { return "recommendation_item" }
