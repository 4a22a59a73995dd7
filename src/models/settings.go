package models

import (
	"huletfish/src/types"

	"github.com/google/uuid"
)

const (
	SETTINGS_GROUP_PAYMENTS = "payments"
	SETTING_EXCHANGE_RATES  = "exchange_rates"
)

type Setting struct {
	ID           uuid.UUID      `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	SettingKey   string         `gorm:"uniqueIndex:idx_settings_group_key" json:"settingKey"`
	SettingValue types.JSONBAny `gorm:"type:jsonb" json:"settingValue"`
	Group        string         `gorm:"uniqueIndex:idx_settings_group_key" json:"group,omitempty"`

	types.Timestamps
}
