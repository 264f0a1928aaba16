package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/george11642/BlackPill-sub000/models"
)

type AchievementService struct {
	DB *gorm.DB
}

func NewAchievementService(db *gorm.DB) *AchievementService {
	return &AchievementService{DB: db}
}

// UnlockResult reports what happened for one key. AlreadyUnlocked is a normal
// outcome, never an error.
type UnlockResult struct {
	Unlocked        bool `json:"unlocked"`
	AlreadyUnlocked bool `json:"already_unlocked"`
}

// Unlock records an achievement for a user at most once. The insert leans on
// the (user, key) unique index: a conflicting insert affects zero rows and is
// reported as AlreadyUnlocked, which closes the check-then-act race between
// concurrent triggers.
func (s *AchievementService) Unlock(externalUserID, key string) (*UnlockResult, error) {
	if _, ok := models.AchievementByKey(key); !ok {
		return nil, fmt.Errorf("unknown achievement key: %s", key)
	}

	ua := models.UserAchievement{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		AchievementKey: key,
	}
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return &UnlockResult{Unlocked: false, AlreadyUnlocked: true}, nil
	}

	log.Printf("🏆 Achievement unlocked: %s → %s", key, externalUserID)
	return &UnlockResult{Unlocked: true}, nil
}

// ClaimReward flips the reward_claimed flag on an unlocked achievement.
func (s *AchievementService) ClaimReward(externalUserID, key string) error {
	res := s.DB.Model(&models.UserAchievement{}).
		Where("external_user_id = ? AND achievement_key = ? AND reward_claimed = ?", externalUserID, key, false).
		Update("reward_claimed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("achievement %s is not unlocked or already claimed", key)
	}
	return nil
}

// scoreThresholds are independent checks: every threshold at or below the
// score unlocks, not just the highest tier.
var scoreThresholds = []struct {
	Min float64
	Key string
}{
	{7.0, models.AchievementScore7Plus},
	{8.0, models.AchievementScore8Plus},
	{9.0, models.AchievementScore9Plus},
	{10.0, models.AchievementPerfect10},
}

var improvementThresholds = []struct {
	MinDelta float64
	Key      string
}{
	{0.5, models.AchievementImproved05},
	{1.0, models.AchievementImproved10},
	{2.0, models.AchievementImproved20},
}

var referralThresholds = []struct {
	MinCount int64
	Key      string
}{
	{5, models.AchievementReferral5},
	{25, models.AchievementReferral25},
	{100, models.AchievementReferral100},
}

// EvaluateAnalysis runs the analysis-triggered checks for a freshly persisted
// score. Call it after the analysis row is saved — "first scan" is detected
// from the persisted history. The score is trusted as already validated.
// Per-key failures are logged and skipped; one bad unlock never aborts the
// rest of the batch.
func (s *AchievementService) EvaluateAnalysis(externalUserID string, score float64) []string {
	var unlocked []string

	var scanCount int64
	if err := s.DB.Model(&models.Analysis{}).
		Where("external_user_id = ?", externalUserID).
		Count(&scanCount).Error; err != nil {
		log.Printf("[Achievements] failed to count analyses for %s: %v", externalUserID, err)
	} else if scanCount == 1 {
		unlocked = s.tryUnlock(externalUserID, models.AchievementFirstScan, unlocked)
	}

	for _, threshold := range scoreThresholds {
		if score >= threshold.Min {
			unlocked = s.tryUnlock(externalUserID, threshold.Key, unlocked)
		}
	}

	return unlocked
}

// EvaluateImprovement compares the newest score against the user's first-ever
// recorded score and unlocks every delta tier reached.
func (s *AchievementService) EvaluateImprovement(externalUserID string, newScore float64) []string {
	var count int64
	if err := s.DB.Model(&models.Analysis{}).
		Where("external_user_id = ?", externalUserID).
		Count(&count).Error; err != nil {
		log.Printf("[Achievements] failed to count analyses for %s: %v", externalUserID, err)
		return nil
	}
	if count < 2 {
		// No earlier scan to improve on.
		return nil
	}

	var first models.Analysis
	if err := s.DB.Where("external_user_id = ?", externalUserID).
		Order("created_at ASC").
		First(&first).Error; err != nil {
		log.Printf("[Achievements] failed to load first analysis for %s: %v", externalUserID, err)
		return nil
	}

	delta := newScore - first.Score
	var unlocked []string
	for _, threshold := range improvementThresholds {
		if delta >= threshold.MinDelta {
			unlocked = s.tryUnlock(externalUserID, threshold.Key, unlocked)
		}
	}
	return unlocked
}

// EvaluateLeaderboard unlocks rank achievements. rank must be positive; top
// ten and first place are independent checks.
func (s *AchievementService) EvaluateLeaderboard(externalUserID string, rank int) []string {
	if rank <= 0 {
		return nil
	}
	var unlocked []string
	if rank <= 10 {
		unlocked = s.tryUnlock(externalUserID, models.AchievementLeaderboardTop10, unlocked)
	}
	if rank == 1 {
		unlocked = s.tryUnlock(externalUserID, models.AchievementLeaderboard1st, unlocked)
	}
	return unlocked
}

// EvaluateReferrals unlocks every referral tier at or below the count.
func (s *AchievementService) EvaluateReferrals(externalUserID string, referralCount int64) []string {
	var unlocked []string
	for _, threshold := range referralThresholds {
		if referralCount >= threshold.MinCount {
			unlocked = s.tryUnlock(externalUserID, threshold.Key, unlocked)
		}
	}
	return unlocked
}

// EvaluateGoalCompleted unlocks goal_completed the first time any goal
// finishes. Subsequent completions are no-ops via the unique index.
func (s *AchievementService) EvaluateGoalCompleted(externalUserID string) []string {
	return s.tryUnlock(externalUserID, models.AchievementGoalCompleted, nil)
}

// EvaluateStreak unlocks check-in streak tiers; all tiers at or below the
// streak length unlock.
func (s *AchievementService) EvaluateStreak(externalUserID string, streakDays int) []string {
	tiers := []struct {
		MinDays int
		Key     string
	}{
		{7, models.AchievementWeekStreak},
		{30, models.AchievementMonthStreak},
		{90, models.AchievementQuarterStreak},
		{365, models.AchievementYearStreak},
	}
	var unlocked []string
	for _, tier := range tiers {
		if streakDays >= tier.MinDays {
			unlocked = s.tryUnlock(externalUserID, tier.Key, unlocked)
		}
	}
	return unlocked
}

func (s *AchievementService) tryUnlock(externalUserID, key string, unlocked []string) []string {
	res, err := s.Unlock(externalUserID, key)
	if err != nil {
		log.Printf("[Achievements] failed to unlock %s for %s: %v", key, externalUserID, err)
		return unlocked
	}
	if res.Unlocked {
		unlocked = append(unlocked, key)
	}
	return unlocked
}
