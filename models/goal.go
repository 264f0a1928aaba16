package models

import "time"

const (
	GoalTypeScoreImprovement    = "score_improvement"
	GoalTypeCategoryImprovement = "category_improvement"

	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
)

// Goal tracks a user-defined score target. Status transitions
// active → completed exactly once, the first time current_value
// reaches target_value.
type Goal struct {
	ID             string     `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string     `gorm:"index;not null" json:"external_user_id"`
	Title          string     `gorm:"type:varchar(255)" json:"title,omitempty"`   // user-authored, moderated on create
	GoalType       string     `gorm:"type:varchar(32);not null" json:"goal_type"` // score_improvement | category_improvement
	Category       string     `gorm:"type:varchar(32)" json:"category,omitempty"` // set for category_improvement goals
	TargetValue    float64    `gorm:"not null" json:"target_value"`
	CurrentValue   *float64   `json:"current_value,omitempty"` // nil until the first relevant score arrives
	Deadline       time.Time  `json:"deadline"`
	Status         string     `gorm:"type:varchar(16);default:'active';index" json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	Milestones []Milestone `gorm:"foreignKey:GoalID" json:"milestones,omitempty"`

	Timestamps
}

// Milestone is a sub-goal checkpoint, evaluated independently per milestone.
// Several milestones of the same goal may complete in a single update pass.
type Milestone struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	GoalID      string     `gorm:"index;not null" json:"goal_id"`
	TargetValue float64    `gorm:"not null" json:"target_value"`
	TargetDate  time.Time  `json:"target_date"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}
