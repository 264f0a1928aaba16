package models

import (
	"time"

	"gorm.io/gorm"
)

// FeatureCategories are the eight fixed facial-attribute categories every
// analysis must score. The set is part of the persisted result shape — never
// rename or remove entries.
var FeatureCategories = []string{
	"femininity",
	"skin",
	"jawline",
	"cheekbones",
	"eyes",
	"symmetry",
	"lips",
	"hair",
}

// FeatureAnalysis is the per-category portion of an analysis result.
type FeatureAnalysis struct {
	Score       float64 `json:"score"`       // 1.0–10.0 inclusive
	Description string  `json:"description"` // min length 10
	Improvement string  `json:"improvement"` // min length 20
}

// Tip is one actionable recommendation attached to a result.
type Tip struct {
	Title       string `json:"title"`       // min length 5
	Description string `json:"description"` // min length 30
	Timeframe   string `json:"timeframe"`   // min length 5, free text ("2-4 weeks")
}

// AnalysisResult is the validated outcome of one facial-analysis request.
// Breakdown must contain every key in FeatureCategories; Tips must hold at
// least five entries.
type AnalysisResult struct {
	Score     float64                    `json:"score"`
	Breakdown map[string]FeatureAnalysis `json:"breakdown"`
	Tips      []Tip                      `json:"tips"`
}

// Analysis is the persisted owner row for one result.
type Analysis struct {
	ID             string         `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string         `gorm:"index;not null" json:"external_user_id"` // links to profile service
	ImageURL       string         `gorm:"type:text" json:"image_url"`
	Score          float64        `json:"score"` // denormalized overall score for history/improvement queries
	Result         AnalysisResult `gorm:"type:jsonb;serializer:json" json:"result"`
	Fallback       bool           `gorm:"default:false" json:"fallback"` // degraded-quality marker, set when the fallback scorer produced Result

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
