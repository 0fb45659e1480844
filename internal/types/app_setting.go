package types

import "time"

const SettingPremiumTrialDays = "premium_trial_days"

type AppSetting struct {
	Key       string    `gorm:"type:varchar(100);primaryKey;column:key" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null;column:value" json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AppSetting) TableName() string { return "app_setting" }
