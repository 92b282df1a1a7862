package models

import "time"

// UserSource records signup attribution. It is written once and never updated.
type UserSource struct {
	UserID      string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AffCode     string    `gorm:"type:varchar(100)" json:"affCode,omitempty"`
	UTMSource   string    `gorm:"column:utm_source;type:varchar(255)" json:"utmSource,omitempty"`
	UTMMedium   string    `gorm:"column:utm_medium;type:varchar(255)" json:"utmMedium,omitempty"`
	UTMCampaign string    `gorm:"column:utm_campaign;type:varchar(255)" json:"utmCampaign,omitempty"`
	UTMTerm     string    `gorm:"column:utm_term;type:varchar(255)" json:"utmTerm,omitempty"`
	UTMContent  string    `gorm:"column:utm_content;type:varchar(255)" json:"utmContent,omitempty"`
	Referrer    string    `gorm:"type:text" json:"referrer,omitempty"`
	CountryCode string    `gorm:"type:varchar(10)" json:"countryCode,omitempty"`
	Browser     string    `gorm:"type:varchar(100)" json:"browser,omitempty"`
	OS          string    `gorm:"column:os;type:varchar(100)" json:"os,omitempty"`
	DeviceType  string    `gorm:"type:varchar(50)" json:"deviceType,omitempty"`
	DeviceBrand string    `gorm:"type:varchar(100)" json:"deviceBrand,omitempty"`
	DeviceModel string    `gorm:"type:varchar(100)" json:"deviceModel,omitempty"`
	Language    string    `gorm:"type:varchar(20)" json:"language,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (UserSource) TableName() string {
	return "user_source"
}
