package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/george11642/BlackPill-sub000/models"
)

type GoalService struct {
	DB           *gorm.DB
	Achievements *AchievementService
}

func NewGoalService(db *gorm.DB, achievements *AchievementService) *GoalService {
	return &GoalService{DB: db, Achievements: achievements}
}

// ProgressUpdate reports what changed so the caller can drive celebratory UI.
// The updater itself decides nothing about presentation.
type ProgressUpdate struct {
	UpdatedGoals        []models.Goal      `json:"updated_goals"`
	CompletedMilestones []models.Milestone `json:"completed_milestones"`
}

// UpdateProgress advances every active score_improvement goal for the user
// with a freshly validated overall score. current_value is an unconditional
// overwrite, not a running aggregate. A goal reaching its target transitions
// to completed exactly once and triggers the goal achievement best-effort;
// per-goal persistence failures are logged and the rest of the batch
// continues.
func (s *GoalService) UpdateProgress(externalUserID string, newScore float64) (*ProgressUpdate, error) {
	return s.update(externalUserID, models.GoalTypeScoreImprovement, "", newScore)
}

// UpdateCategoryProgress advances active category_improvement goals for one
// breakdown category.
func (s *GoalService) UpdateCategoryProgress(externalUserID, category string, newScore float64) (*ProgressUpdate, error) {
	return s.update(externalUserID, models.GoalTypeCategoryImprovement, category, newScore)
}

// UpdateFromResult applies one validated analysis across every goal it can
// advance: the overall score drives score_improvement goals, each breakdown
// category drives the category_improvement goals tracking it. A failed
// category batch is logged and the remaining categories still run.
func (s *GoalService) UpdateFromResult(externalUserID string, result *models.AnalysisResult) (*ProgressUpdate, error) {
	progress, err := s.UpdateProgress(externalUserID, result.Score)
	if err != nil {
		return nil, err
	}

	for _, category := range models.FeatureCategories {
		feature, ok := result.Breakdown[category]
		if !ok {
			continue
		}
		categoryProgress, err := s.UpdateCategoryProgress(externalUserID, category, feature.Score)
		if err != nil {
			log.Printf("[Goals] category goal update failed for %s/%s: %v", externalUserID, category, err)
			continue
		}
		progress.UpdatedGoals = append(progress.UpdatedGoals, categoryProgress.UpdatedGoals...)
		progress.CompletedMilestones = append(progress.CompletedMilestones, categoryProgress.CompletedMilestones...)
	}

	return progress, nil
}

func (s *GoalService) update(externalUserID, goalType, category string, newScore float64) (*ProgressUpdate, error) {
	query := s.DB.Where("external_user_id = ? AND status = ? AND goal_type = ?",
		externalUserID, models.GoalStatusActive, goalType)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var goals []models.Goal
	if err := query.Find(&goals).Error; err != nil {
		return nil, err
	}

	update := &ProgressUpdate{}
	for i := range goals {
		goal := &goals[i]
		goal.CurrentValue = &newScore

		completed := false
		if newScore >= goal.TargetValue {
			now := time.Now()
			goal.Status = models.GoalStatusCompleted
			goal.CompletedAt = &now
			completed = true
		}

		if err := s.DB.Save(goal).Error; err != nil {
			log.Printf("[Goals] failed to update goal %s for %s: %v", goal.ID, externalUserID, err)
			continue
		}
		update.UpdatedGoals = append(update.UpdatedGoals, *goal)

		if completed {
			// Best-effort: a failed unlock must not fail the goal update.
			s.Achievements.EvaluateGoalCompleted(externalUserID)
		}

		update.CompletedMilestones = append(update.CompletedMilestones,
			s.completeMilestones(goal, newScore)...)
	}

	return update, nil
}

// completeMilestones marks every incomplete milestone whose target is already
// reached, in target-date order. Several thresholds crossed at once all
// complete in the same pass.
func (s *GoalService) completeMilestones(goal *models.Goal, currentValue float64) []models.Milestone {
	var milestones []models.Milestone
	if err := s.DB.Where("goal_id = ? AND completed = ?", goal.ID, false).
		Order("target_date ASC").
		Find(&milestones).Error; err != nil {
		log.Printf("[Goals] failed to load milestones for goal %s: %v", goal.ID, err)
		return nil
	}

	var completed []models.Milestone
	for i := range milestones {
		m := &milestones[i]
		if m.TargetValue > currentValue {
			continue
		}
		now := time.Now()
		m.Completed = true
		m.CompletedAt = &now
		if err := s.DB.Save(m).Error; err != nil {
			log.Printf("[Goals] failed to complete milestone %s: %v", m.ID, err)
			continue
		}
		completed = append(completed, *m)
	}
	return completed
}
