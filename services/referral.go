package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/george11642/BlackPill-sub000/models"
)

type ReferralService struct {
	DB           *gorm.DB
	Achievements *AchievementService
}

func NewReferralService(db *gorm.DB, achievements *AchievementService) *ReferralService {
	return &ReferralService{DB: db, Achievements: achievements}
}

// GenerateReferralCode builds a shareable code from a display name, e.g.
// "maria-santos-4f2a".
func GenerateReferralCode(displayName string) string {
	base := slug.Make(displayName)
	if base == "" {
		base = "user"
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:4])
}

// GetOrCreateCode returns the user's shareable referral code, generating and
// persisting one on the first request. Concurrent first requests resolve to
// the same code via the unique index on external_user_id.
func (s *ReferralService) GetOrCreateCode(externalUserID, displayName string) (string, error) {
	var existing models.ReferralCode
	err := s.DB.Where("external_user_id = ?", externalUserID).First(&existing).Error
	if err == nil {
		return existing.Code, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	code := models.ReferralCode{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Code:           GenerateReferralCode(displayName),
	}
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&code)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		// Another request created it first.
		if err := s.DB.Where("external_user_id = ?", externalUserID).First(&existing).Error; err != nil {
			return "", err
		}
		return existing.Code, nil
	}
	return code.Code, nil
}

// RecordReferral registers a successful referral and re-evaluates the
// referrer's tier achievements against the new total. A referred user counts
// once; a duplicate event is a no-op.
func (s *ReferralService) RecordReferral(referrerID, referredID, codeUsed string) ([]string, error) {
	referral := models.Referral{
		ID:               uuid.NewString(),
		ReferrerID:       referrerID,
		ReferredID:       referredID,
		ReferralCodeUsed: codeUsed,
	}
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&referral)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var count int64
	if err := s.DB.Model(&models.Referral{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	return s.Achievements.EvaluateReferrals(referrerID, count), nil
}
