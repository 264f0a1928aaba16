package models

// Referral tracks one successful referral. The unique index on ReferredID
// keeps a referred user from counting toward more than one referrer.
type Referral struct {
	ID               string `gorm:"primaryKey;type:uuid" json:"id"`
	ReferrerID       string `gorm:"index;not null" json:"referrer_id"`       // ExternalUserID
	ReferredID       string `gorm:"uniqueIndex;not null" json:"referred_id"` // ExternalUserID
	ReferralCodeUsed string `gorm:"not null" json:"referral_code_used"`

	Timestamps
}

// ReferralCode is a user's own shareable code, generated once on first
// request and stable afterwards.
type ReferralCode struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Code           string `gorm:"uniqueIndex;not null" json:"code"`

	Timestamps
}
