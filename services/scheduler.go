package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/george11642/BlackPill-sub000/models"
)

// StartStreakScheduler runs a daily pass that recomputes check-in streaks
// from analysis history and unlocks streak achievements. Launched once from
// main.
func (s *AchievementService) StartStreakScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			var userIDs []string
			// Only users active in the last day can have extended a streak.
			since := time.Now().AddDate(0, 0, -1)
			err := s.DB.Model(&models.Analysis{}).
				Where("created_at >= ?", since).
				Distinct().
				Pluck("external_user_id", &userIDs).Error
			if err != nil {
				log.Printf("[Streaks] DB error: %v", err)
				return
			}

			for _, userID := range userIDs {
				streak, err := s.currentStreak(userID)
				if err != nil {
					log.Printf("[Streaks] failed to compute streak for %s: %v", userID, err)
					continue
				}
				if unlocked := s.EvaluateStreak(userID, streak); len(unlocked) > 0 {
					log.Printf("🔥 Streak achievements for %s (streak=%dd): %v", userID, streak, unlocked)
				}
			}
		}),
	)
}

// currentStreak counts consecutive calendar days with at least one analysis,
// ending today or yesterday.
func (s *AchievementService) currentStreak(externalUserID string) (int, error) {
	var timestamps []time.Time
	err := s.DB.Model(&models.Analysis{}).
		Where("external_user_id = ?", externalUserID).
		Order("created_at DESC").
		Pluck("created_at", &timestamps).Error
	if err != nil {
		return 0, err
	}

	days := make(map[string]bool, len(timestamps))
	for _, ts := range timestamps {
		days[ts.Format("2006-01-02")] = true
	}

	day := time.Now()
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak, nil
}
