package model

import (
	"time"

	"gorm.io/gorm/clause"
)

// Setting 系统设置表
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"key"`
	Value     string    `gorm:"type:varchar(200)" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// 设置键名常量
const (
	SettingKeyMaintenanceMode = "maintenance_mode" // 维护模式: true/false
	SettingKeyForceStatus     = "force_status"     // 强制状态: up/down/auto
)

// force_status 的合法取值
const (
	ForceStatusUp   = "up"
	ForceStatusDown = "down"
	ForceStatusAuto = "auto"
)

// GetSettingValue 读取设置, 不存在时返回默认值
func GetSettingValue(key, defaultValue string) string {
	var setting Setting
	if err := GetDB().Where("`key` = ?", key).First(&setting).Error; err != nil {
		return defaultValue
	}
	return setting.Value
}

// SetSettingValue 写入设置 (upsert)
func SetSettingValue(key, value string) error {
	setting := Setting{
		Key:   key,
		Value: value,
	}
	return GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}

// GetAllSettings 读取全部设置为 key→value 映射
func GetAllSettings() (map[string]string, error) {
	var settings []Setting
	if err := GetDB().Find(&settings).Error; err != nil {
		return nil, err
	}
	result := make(map[string]string, len(settings))
	for _, s := range settings {
		result[s.Key] = s.Value
	}
	return result, nil
}
