package service

import (
	"testing"
	"time"

	"downwatch/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestGroupReportsByIP(t *testing.T) {
	reports := []model.Report{
		{IP: "1.1.1.1", Timestamp: 100},
		{IP: "2.2.2.2", Timestamp: 200},
		{IP: "1.1.1.1", Timestamp: 300},
		{IP: "1.1.1.1", Timestamp: 250},
		{IP: "3.3.3.3", Timestamp: 400},
	}

	stats := GroupReportsByIP(reports)
	assert.Len(t, stats, 3)

	// 按计数倒序, 计数相同按最近上报倒序
	assert.Equal(t, "1.1.1.1", stats[0].IP)
	assert.Equal(t, 3, stats[0].Count)
	assert.Equal(t, int64(300), stats[0].LastReport)
	assert.Equal(t, "60", stats[0].Share)

	assert.Equal(t, "3.3.3.3", stats[1].IP)
	assert.Equal(t, "2.2.2.2", stats[2].IP)
	assert.Equal(t, "20", stats[1].Share)
}

func TestGroupReportsByIPEmpty(t *testing.T) {
	stats := GroupReportsByIP(nil)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestGroupReportsShareRounding(t *testing.T) {
	reports := []model.Report{
		{IP: "1.1.1.1", Timestamp: 1},
		{IP: "2.2.2.2", Timestamp: 2},
		{IP: "3.3.3.3", Timestamp: 3},
	}

	stats := GroupReportsByIP(reports)
	for _, s := range stats {
		assert.Equal(t, "33.33", s.Share)
	}
}

func TestHourlyTrend(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)

	reports := []model.Report{
		{IP: "a", Timestamp: now.Add(-10 * time.Minute).UnixMilli()}, // 当前小时
		{IP: "b", Timestamp: now.Add(-40 * time.Minute).UnixMilli()}, // 上一小时
		{IP: "c", Timestamp: now.Add(-50 * time.Minute).UnixMilli()}, // 上一小时
		{IP: "d", Timestamp: now.Add(-3 * time.Hour).UnixMilli()},    // 三小时前
	}

	labels, counts := HourlyTrend(reports, now, 24)
	assert.Len(t, labels, 24)
	assert.Len(t, counts, 24)

	// 最后一个桶是当前小时
	assert.Equal(t, "15:00", labels[23])
	assert.Equal(t, int64(1), counts[23])
	assert.Equal(t, "14:00", labels[22])
	assert.Equal(t, int64(2), counts[22])
	assert.Equal(t, int64(1), counts[20])
	assert.Equal(t, int64(0), counts[21])
}
