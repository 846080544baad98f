package service

import (
	"sort"
	"time"

	"downwatch/internal/model"

	"github.com/shopspring/decimal"
)

// IPReportStat 按地址聚合的上报统计
type IPReportStat struct {
	IP         string `json:"ip"`
	Count      int    `json:"count"`
	LastReport int64  `json:"last_report"` // 最近一次上报的毫秒时间戳
	Share      string `json:"share"`       // 占窗口内总上报数的百分比
}

// GroupReportsByIP 对上报快照做聚合: 按地址分组计数并取最近时间戳, 按计数倒序
// 纯函数, 不碰数据库
func GroupReportsByIP(reports []model.Report) []IPReportStat {
	grouped := make(map[string]*IPReportStat)
	for _, r := range reports {
		stat, ok := grouped[r.IP]
		if !ok {
			stat = &IPReportStat{IP: r.IP}
			grouped[r.IP] = stat
		}
		stat.Count++
		if r.Timestamp > stat.LastReport {
			stat.LastReport = r.Timestamp
		}
	}

	stats := make([]IPReportStat, 0, len(grouped))
	total := decimal.NewFromInt(int64(len(reports)))
	hundred := decimal.NewFromInt(100)
	for _, stat := range grouped {
		if !total.IsZero() {
			share := decimal.NewFromInt(int64(stat.Count)).Mul(hundred).Div(total).Round(2)
			stat.Share = share.String()
		}
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].LastReport > stats[j].LastReport
	})
	return stats
}

// HourlyTrend 把上报快照按小时分桶, 返回从旧到新的标签和计数
// 同样是纯函数, now与windowHours决定桶边界
func HourlyTrend(reports []model.Report, now time.Time, windowHours int) ([]string, []int64) {
	counts := make(map[int64]int64)
	for _, r := range reports {
		bucket := time.UnixMilli(r.Timestamp).Truncate(time.Hour).Unix()
		counts[bucket]++
	}

	labels := make([]string, 0, windowHours)
	series := make([]int64, 0, windowHours)
	for h := windowHours - 1; h >= 0; h-- {
		bucketStart := now.Truncate(time.Hour).Add(-time.Duration(h) * time.Hour)
		labels = append(labels, bucketStart.Format("15:00"))
		series = append(series, counts[bucketStart.Unix()])
	}
	return labels, series
}
