package models

import "time"

// Achievement keys are persisted identifiers — extend only by adding new
// entries, never renumber or rename existing ones.
const (
	AchievementFirstScan        = "first_scan"
	AchievementScore7Plus       = "score_7_plus"
	AchievementScore8Plus       = "score_8_plus"
	AchievementScore9Plus       = "score_9_plus"
	AchievementPerfect10        = "perfect_10"
	AchievementImproved05       = "improved_05"
	AchievementImproved10       = "improved_10"
	AchievementImproved20       = "improved_20"
	AchievementWeekStreak       = "week_streak"
	AchievementMonthStreak      = "month_streak"
	AchievementQuarterStreak    = "quarter_streak"
	AchievementYearStreak       = "year_streak"
	AchievementRoutine7         = "completed_routine_7"
	AchievementRoutine30        = "completed_routine_30"
	AchievementRoutine90        = "completed_routine_90"
	AchievementPerfectWeek      = "perfect_week"
	AchievementFirstShare       = "first_share"
	AchievementViralShare       = "viral_share"
	AchievementReferral5        = "referral_5"
	AchievementReferral25       = "referral_25"
	AchievementReferral100      = "referral_100"
	AchievementLeaderboardTop10 = "leaderboard_top10"
	AchievementLeaderboard1st   = "leaderboard_1st"
	AchievementHelpfulCommenter = "helpful_commenter"
	AchievementGoalCompleted    = "goal_completed"
)

// AchievementDefinition: static catalog entry, loaded once, never mutated.
type AchievementDefinition struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Category    string `json:"category"` // analysis, improvement, engagement, routine, social, community, goals
	Description string `json:"description"`
}

// AchievementCatalog is the full fixed catalog. Order matters only for display.
var AchievementCatalog = []AchievementDefinition{
	{Key: AchievementFirstScan, Name: "First Impressions", Emoji: "📸", Category: "analysis", Description: "Completed your first facial analysis"},
	{Key: AchievementScore7Plus, Name: "Above Average", Emoji: "⭐", Category: "analysis", Description: "Scored 7.0 or higher on an analysis"},
	{Key: AchievementScore8Plus, Name: "Turning Heads", Emoji: "🌟", Category: "analysis", Description: "Scored 8.0 or higher on an analysis"},
	{Key: AchievementScore9Plus, Name: "Elite Tier", Emoji: "💫", Category: "analysis", Description: "Scored 9.0 or higher on an analysis"},
	{Key: AchievementPerfect10, Name: "Perfect Ten", Emoji: "👑", Category: "analysis", Description: "Scored a perfect 10.0"},
	{Key: AchievementImproved05, Name: "Glow Up", Emoji: "📈", Category: "improvement", Description: "Improved your score by 0.5 since your first scan"},
	{Key: AchievementImproved10, Name: "Transformation", Emoji: "🚀", Category: "improvement", Description: "Improved your score by 1.0 since your first scan"},
	{Key: AchievementImproved20, Name: "Total Rebuild", Emoji: "🏆", Category: "improvement", Description: "Improved your score by 2.0 since your first scan"},
	{Key: AchievementWeekStreak, Name: "Week Warrior", Emoji: "🔥", Category: "engagement", Description: "Checked in 7 days in a row"},
	{Key: AchievementMonthStreak, Name: "Monthly Devotion", Emoji: "📅", Category: "engagement", Description: "Checked in 30 days in a row"},
	{Key: AchievementQuarterStreak, Name: "Quarter Master", Emoji: "🗓️", Category: "engagement", Description: "Checked in 90 days in a row"},
	{Key: AchievementYearStreak, Name: "Year One", Emoji: "🎂", Category: "engagement", Description: "Checked in 365 days in a row"},
	{Key: AchievementRoutine7, Name: "Habit Forming", Emoji: "✅", Category: "routine", Description: "Completed a routine 7 days in a row"},
	{Key: AchievementRoutine30, Name: "Routine Machine", Emoji: "⚙️", Category: "routine", Description: "Completed a routine 30 days in a row"},
	{Key: AchievementRoutine90, Name: "Discipline Incarnate", Emoji: "🧱", Category: "routine", Description: "Completed a routine 90 days in a row"},
	{Key: AchievementPerfectWeek, Name: "Perfect Week", Emoji: "💯", Category: "routine", Description: "Completed every routine task for a full week"},
	{Key: AchievementFirstShare, Name: "Word of Mouth", Emoji: "📣", Category: "social", Description: "Shared your results for the first time"},
	{Key: AchievementViralShare, Name: "Gone Viral", Emoji: "🌐", Category: "social", Description: "Your shared result reached 1,000 views"},
	{Key: AchievementReferral5, Name: "Recruiter", Emoji: "🤝", Category: "social", Description: "Referred 5 friends"},
	{Key: AchievementReferral25, Name: "Influencer", Emoji: "📱", Category: "social", Description: "Referred 25 friends"},
	{Key: AchievementReferral100, Name: "Ambassador", Emoji: "🎖️", Category: "social", Description: "Referred 100 friends"},
	{Key: AchievementLeaderboardTop10, Name: "Top Ten", Emoji: "🥇", Category: "community", Description: "Reached the leaderboard top 10"},
	{Key: AchievementLeaderboard1st, Name: "Number One", Emoji: "🏅", Category: "community", Description: "Reached #1 on the leaderboard"},
	{Key: AchievementHelpfulCommenter, Name: "Helpful Hand", Emoji: "💬", Category: "community", Description: "Received 10 helpful votes on your comments"},
	{Key: AchievementGoalCompleted, Name: "Goal Getter", Emoji: "🎯", Category: "goals", Description: "Completed your first goal"},
}

var achievementsByKey = func() map[string]AchievementDefinition {
	m := make(map[string]AchievementDefinition, len(AchievementCatalog))
	for _, def := range AchievementCatalog {
		m[def.Key] = def
	}
	return m
}()

// AchievementByKey looks up a catalog entry.
func AchievementByKey(key string) (AchievementDefinition, bool) {
	def, ok := achievementsByKey[key]
	return def, ok
}

// UserAchievement: one unlock event. The composite unique index enforces the
// at-most-once-per-user-per-key invariant at the storage layer; inserts that
// hit it are treated as "already unlocked", not as errors.
type UserAchievement struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string    `gorm:"not null;uniqueIndex:idx_user_achievement_key" json:"external_user_id"`
	AchievementKey string    `gorm:"not null;uniqueIndex:idx_user_achievement_key" json:"achievement_key"`
	UnlockedAt     time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
	RewardClaimed  bool      `gorm:"default:false" json:"reward_claimed"`
}
