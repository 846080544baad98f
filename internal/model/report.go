package model

// Report 故障上报记录
// 只追加, 不修改, 不删除; 旧记录由窗口查询按时间戳排除
type Report struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	IP        string `gorm:"type:varchar(45);not null;index" json:"ip"` // 支持IPv6
	Timestamp int64  `gorm:"not null;index" json:"timestamp"`           // 毫秒时间戳
}

// TableName 表名
func (Report) TableName() string {
	return "reports"
}

// CreateReport 写入一条上报记录
func CreateReport(ip string, timestamp int64) error {
	report := Report{
		IP:        ip,
		Timestamp: timestamp,
	}
	return GetDB().Create(&report).Error
}

// HasRecentReport 检查该IP在since之后是否已有上报
func HasRecentReport(ip string, since int64) (bool, error) {
	var count int64
	err := GetDB().Model(&Report{}).
		Where("ip = ? AND timestamp > ?", ip, since).
		Count(&count).Error
	return count > 0, err
}

// GetRecentReports 获取since之后的全部上报记录
func GetRecentReports(since int64) ([]Report, error) {
	var reports []Report
	err := GetDB().Where("timestamp > ?", since).
		Order("timestamp DESC").
		Find(&reports).Error
	return reports, err
}

// CountRecentReports 统计since之后的上报数
func CountRecentReports(since int64) (int64, error) {
	var count int64
	err := GetDB().Model(&Report{}).
		Where("timestamp > ?", since).
		Count(&count).Error
	return count, err
}
