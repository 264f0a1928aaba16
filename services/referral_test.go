package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/george11642/BlackPill-sub000/models"
)

func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode("María Sántos")
	assert.Contains(t, code, "maria-santos-")

	fallback := GenerateReferralCode("")
	assert.Contains(t, fallback, "user-")
}

func TestRecordReferralCountsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db, NewAchievementService(db))

	_, err := svc.RecordReferral("referrer-1", "friend-1", "code-a")
	require.NoError(t, err)

	// Same referred user again is a no-op.
	unlocked, err := svc.RecordReferral("referrer-1", "friend-1", "code-a")
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	var count int64
	require.NoError(t, db.Model(&models.Referral{}).
		Where("referrer_id = ?", "referrer-1").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordReferralUnlocksTier(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db, NewAchievementService(db))

	var lastUnlocked []string
	for i := 0; i < 5; i++ {
		unlocked, err := svc.RecordReferral("referrer-1", "friend-"+string(rune('a'+i)), "code-a")
		require.NoError(t, err)
		lastUnlocked = unlocked
	}

	assert.Contains(t, lastUnlocked, models.AchievementReferral5)
}

func TestGetOrCreateCodeIsStable(t *testing.T) {
	db := newTestDB(t)
	svc := NewReferralService(db, NewAchievementService(db))

	first, err := svc.GetOrCreateCode("user-1", "María Sántos")
	require.NoError(t, err)
	assert.Contains(t, first, "maria-santos-")

	// The display name only matters on first issue.
	second, err := svc.GetOrCreateCode("user-1", "Different Name")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var count int64
	require.NoError(t, db.Model(&models.ReferralCode{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
