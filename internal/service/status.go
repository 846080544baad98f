package service

import (
	"sync"
	"time"

	"downwatch/internal/model"
)

// StatusDownThreshold 默认判定故障的窗口内上报数阈值
const StatusDownThreshold = 30

// 对外展示的状态短语
const (
	StatusPhraseUp           = "up"
	StatusPhraseDown         = "down"
	StatusPhraseProbablyDown = "probably down"
)

// StatusService 公开状态解析服务
type StatusService struct {
	mu            sync.RWMutex
	windowMillis  int64
	downThreshold int
}

var statusService *StatusService
var statusOnce sync.Once

// GetStatusService 获取状态服务单例
func GetStatusService() *StatusService {
	statusOnce.Do(func() {
		statusService = &StatusService{
			windowMillis:  24 * 3600 * 1000,
			downThreshold: StatusDownThreshold,
		}
	})
	return statusService
}

// Configure 设置窗口长度与阈值
func (s *StatusService) Configure(windowMillis int64, downThreshold int) {
	s.mu.Lock()
	s.windowMillis = windowMillis
	s.downThreshold = downThreshold
	s.mu.Unlock()
}

// WindowMillis 当前窗口长度(毫秒)
func (s *StatusService) WindowMillis() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windowMillis
}

// StatusResult 状态查询结果
type StatusResult struct {
	Status  string         `json:"status"`
	Count   int            `json:"count"`
	Reports []model.Report `json:"reports"`
	Forced  bool           `json:"forced"`
}

// Resolve 解析当前公开状态
// force_status不为auto时直接返回覆盖值, 完全跳过窗口查询;
// auto时统计窗口内上报数, 达到阈值判定为疑似故障
func (s *StatusService) Resolve() (*StatusResult, error) {
	forced := model.GetSettingValue(model.SettingKeyForceStatus, model.ForceStatusAuto)
	if forced != model.ForceStatusAuto {
		status := StatusPhraseDown
		if forced == model.ForceStatusUp {
			status = StatusPhraseUp
		}
		return &StatusResult{
			Status:  status,
			Count:   0,
			Reports: []model.Report{},
			Forced:  true,
		}, nil
	}

	s.mu.RLock()
	windowMillis := s.windowMillis
	threshold := s.downThreshold
	s.mu.RUnlock()

	since := time.Now().UnixMilli() - windowMillis
	reports, err := model.GetRecentReports(since)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []model.Report{}
	}

	status := StatusPhraseUp
	if len(reports) >= threshold {
		status = StatusPhraseProbablyDown
	}

	return &StatusResult{
		Status:  status,
		Count:   len(reports),
		Reports: reports,
		Forced:  false,
	}, nil
}
