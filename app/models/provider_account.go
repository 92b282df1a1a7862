package models

import "time"

// ProviderAccount links an OAuth identity to a user.
type ProviderAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"type:varchar(36);index;not null" json:"userId"`
	Provider       string     `gorm:"index:ux_account_provider_uid,unique;type:varchar(50)" json:"provider"`
	ProviderUserID string     `gorm:"index:ux_account_provider_uid,unique;type:varchar(191)" json:"providerUserId"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (ProviderAccount) TableName() string {
	return "account"
}
