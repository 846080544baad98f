package model

import (
	"time"
)

// DefaultBlacklistReason 未填写原因时的默认值
const DefaultBlacklistReason = "No reason provided"

// IPBlacklist IP黑名单
type IPBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IP        string    `gorm:"type:varchar(45);uniqueIndex;not null" json:"ip"` // 支持IPv6
	Reason    string    `gorm:"type:varchar(200)" json:"reason"`                 // 拉黑原因
	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (IPBlacklist) TableName() string {
	return "ip_blacklist"
}

// IsIPBlacklisted 检查IP是否在黑名单中
func IsIPBlacklisted(ip string) bool {
	var count int64
	GetDB().Model(&IPBlacklist{}).Where("ip = ?", ip).Count(&count)
	return count > 0
}

// AddIPToBlacklist 添加IP到黑名单
// 同一IP重复添加会返回 gorm.ErrDuplicatedKey
func AddIPToBlacklist(ip, reason string) error {
	if reason == "" {
		reason = DefaultBlacklistReason
	}
	entry := IPBlacklist{
		IP:     ip,
		Reason: reason,
	}
	return GetDB().Create(&entry).Error
}

// RemoveIPFromBlacklist 从黑名单移除IP (IP不存在时也返回成功, 幂等)
func RemoveIPFromBlacklist(ip string) error {
	return GetDB().Where("ip = ?", ip).Delete(&IPBlacklist{}).Error
}

// ListIPBlacklist 获取全部黑名单, 按创建时间倒序
func ListIPBlacklist() ([]IPBlacklist, error) {
	var list []IPBlacklist
	err := GetDB().Order("created_at DESC").Find(&list).Error
	return list, err
}
